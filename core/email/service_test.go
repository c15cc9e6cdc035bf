package email_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/assistant/core"
	"github.com/trezcool/assistant/core/email"
	emailsvc "github.com/trezcool/assistant/services/email"
	"github.com/trezcool/assistant/storage/database/inmemdb"
	testutil "github.com/trezcool/assistant/tests"
)

func setup(t *testing.T) (*email.Service, *email.Records, *emailsvc.ConsoleServiceMock, *testutil.Logger) {
	db, err := inmemdb.Open()
	require.NoError(t, err)

	validate, translator := core.NewValidator()
	records := email.NewRecords(db, validate, translator)
	records.SetClock(testutil.NewClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).Now)

	mailer := emailsvc.NewConsoleServiceMock()
	logger := testutil.NewLogger()
	return email.NewService(records, mailer, "Assistant <assistant@example.com>", logger), records, mailer, logger
}

func createEmail(t *testing.T, records *email.Records, payload string) *email.Email {
	eml, err := records.Create(context.Background(), []byte(payload))
	require.NoError(t, err)
	return eml
}

const validEmail = `{"subject": "Hi", "from": "me@example.com", "to": "you@example.com", "body": "Hello\nthere", "account": "work"}`

func TestService_Send(t *testing.T) {
	svc, records, mailer, _ := setup(t)
	ctx := context.Background()
	eml := createEmail(t, records, validEmail)

	res, err := svc.Send(ctx, eml.ID)
	require.NoError(t, err)
	assert.Equal(t, "Email sent successfully", res.Message)
	assert.True(t, res.Email.IsSent)
	assert.True(t, res.Email.SentAt.Valid)
	assert.Equal(t, email.StatusResponded, res.Email.Status)
	assert.True(t, res.EmailResult.Success)

	stored, err := records.Get(ctx, eml.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSent)
	assert.Equal(t, email.StatusResponded, stored.Status)

	msgs := mailer.SentMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "me@example.com", msgs[0].From.Address)
	assert.Equal(t, []string{"you@example.com"}, msgs[0].Recipients())
	assert.Equal(t, "Hello\nthere", msgs[0].TextContent)
	assert.Equal(t, "Hello<br>there", msgs[0].HTMLContent)

	_, err = svc.Send(ctx, eml.ID)
	assert.Equal(t, &core.ConflictError{Message: "Email has already been sent"}, err)

	_, err = svc.Send(ctx, "6f0f7a2e-8a43-4a55-9b39-3a4bfe6a1c11")
	assert.Equal(t, &core.NotFoundError{Name: "Email"}, err)
	assert.Len(t, mailer.SentMessages(), 1)
}

func TestService_SendFailure(t *testing.T) {
	svc, records, mailer, _ := setup(t)
	ctx := context.Background()
	eml := createEmail(t, records, validEmail)

	mailer.Err = errors.New("535 authentication failed")
	_, err := svc.Send(ctx, eml.ID)
	var dErr *core.DeliveryError
	require.True(t, errors.As(err, &dErr))
	assert.Equal(t, "535 authentication failed", dErr.Error())

	stored, err := records.Get(ctx, eml.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsSent)
	assert.False(t, stored.SentAt.Valid)
	assert.Equal(t, email.StatusUnread, stored.Status)
	assert.True(t, eml.UpdatedAt.Equal(stored.UpdatedAt))

	mailer.Err = nil
	_, err = svc.Send(ctx, eml.ID)
	assert.NoError(t, err)
}

func TestService_SendConcurrently(t *testing.T) {
	svc, records, mailer, _ := setup(t)
	eml := createEmail(t, records, validEmail)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		sent      int
		conflicts int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Send(context.Background(), eml.ID)
			mu.Lock()
			defer mu.Unlock()
			var cErr *core.ConflictError
			switch {
			case err == nil:
				sent++
			case errors.As(err, &cErr):
				conflicts++
			default:
				t.Errorf("Send() unexpected error = %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, sent)
	assert.Equal(t, 9, conflicts)
	assert.Len(t, mailer.SentMessages(), 1)
}

func TestEmail_Message(t *testing.T) {
	eml := email.Email{To: "a@example.com, B <b@example.com>", Subject: "S", Body: "line1\nline2"}

	msg := eml.Message("Assistant <assistant@example.com>")
	assert.Equal(t, "assistant@example.com", msg.From.Address)
	assert.Equal(t, "Assistant", msg.From.Name)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, msg.Recipients())
	assert.Equal(t, "line1<br>line2", msg.HTMLContent)

	eml.From = "me@example.com"
	assert.Equal(t, "me@example.com", eml.Message("assistant@example.com").From.Address)
}

func TestService_VerifyTransport(t *testing.T) {
	svc, _, _, _ := setup(t)
	assert.NoError(t, svc.VerifyTransport(context.Background()))
}
