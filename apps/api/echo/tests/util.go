package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/assistant/apps/api/echo"
	"github.com/trezcool/assistant/core"
	"github.com/trezcool/assistant/core/appointment"
	"github.com/trezcool/assistant/core/dashboard"
	"github.com/trezcool/assistant/core/email"
	"github.com/trezcool/assistant/core/errand"
	"github.com/trezcool/assistant/core/list"
	"github.com/trezcool/assistant/core/note"
	emailsvc "github.com/trezcool/assistant/services/email"
	"github.com/trezcool/assistant/storage/database/inmemdb"
	testutil "github.com/trezcool/assistant/tests"
)

type testApp struct {
	Server
	registry *prometheus.Registry
	mailer   *emailsvc.ConsoleServiceMock
	logger   *testutil.Logger
}

func setup(t *testing.T) *testApp {
	t.Helper()

	// set up DB
	db, err := inmemdb.Open()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// set up services
	conf := &core.Config{
		AppName:   "Personal Assistant",
		TestMode:  true,
		BodyLimit: "1M",
		Email:     core.EmailConfig{Transport: core.TransportConsole, From: "assistant@example.com"},
	}
	logger := testutil.NewLogger()
	clock := testutil.NewClock(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))
	validate, translator := core.NewValidator()

	appointments := appointment.NewService(db, validate, translator)
	appointments.SetClock(clock.Now)
	lists := list.NewService(db, validate, translator)
	lists.SetClock(clock.Now)
	notes := note.NewService(db, validate, translator)
	notes.SetClock(clock.Now)
	emails := email.NewRecords(db, validate, translator)
	emails.SetClock(clock.Now)
	errands := errand.NewService(db, validate, translator)
	errands.SetClock(clock.Now)

	mailSvc := emailsvc.NewConsoleServiceMock()
	reg := prometheus.NewRegistry()

	// set up server
	app := NewServer(&Options{
		Conf:           conf,
		Logger:         logger,
		DisableReqLogs: true,
		Registry:       reg,
		AppointmentSvc: appointments,
		ListSvc:        lists,
		NoteSvc:        notes,
		EmailRecords:   emails,
		EmailSvc:       email.NewService(emails, mailSvc, conf.DefaultFromEmail().String(), logger),
		ErrandSvc:      errands,
		DashboardSvc:   dashboard.NewService(appointments, lists, notes, emails, errands),
	})

	return &testApp{
		Server:   app,
		registry: reg,
		mailer:   mailSvc,
		logger:   logger,
	}
}

type httpErr struct {
	Message string `json:"message"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

// do sends a request to the app and returns the recorded response.
func (app *testApp) do(method, path string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newRequest(method, path, data...)
	app.ServeHTTP(rec, req)
	return rec
}

// create posts obj to path, expecting a 201, and returns the decoded record.
func (app *testApp) create(t *testing.T, path string, obj interface{}) map[string]interface{} {
	t.Helper()
	rec := app.do(http.MethodPost, path, marshalObj(t, obj))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeObj(t, rec.Body.Bytes())
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func decodeObj(t *testing.T, data []byte) map[string]interface{} {
	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		t.Fatalf("decodeObj() failed: %v; data %s", err, data)
	}
	return obj
}

func decodeList(t *testing.T, data []byte) []map[string]interface{} {
	var objs []map[string]interface{}
	if err := json.Unmarshal(data, &objs); err != nil {
		t.Fatalf("decodeList() failed: %v; data %s", err, data)
	}
	return objs
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
