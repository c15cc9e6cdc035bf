package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAppointment(title, start, end string) map[string]interface{} {
	return map[string]interface{}{
		"title":     title,
		"startDate": start,
		"endDate":   end,
		"type":      "doctor",
		"location":  "Clinic",
	}
}

func TestAppointmentsAPI(t *testing.T) {
	app := setup(t)

	// created out of order; listed by startDate ascending
	late := app.create(t, "/api/appointments", newAppointment("Dentist", "2024-06-03T10:00:00Z", "2024-06-03T11:00:00Z"))
	early := app.create(t, "/api/appointments", newAppointment("Checkup", "2024-06-01T09:00:00Z", "2024-06-01T09:30:00Z"))
	lateID := late["_id"].(string)

	t.Run("defaults and meta", func(t *testing.T) {
		assert.NotEmpty(t, lateID)
		assert.Equal(t, "scheduled", late["status"])
		assert.Equal(t, late["createdAt"], late["updatedAt"])
		assert.NotEqual(t, late["createdAt"], early["createdAt"])
	})

	t.Run("list", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/api/appointments")
		require.Equal(t, http.StatusOK, rec.Code)
		recs := decodeList(t, rec.Body.Bytes())
		require.Len(t, recs, 2)
		assert.Equal(t, early["_id"], recs[0]["_id"])
		assert.Equal(t, lateID, recs[1]["_id"])
	})

	t.Run("retrieve", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/api/appointments/"+lateID)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, late, decodeObj(t, rec.Body.Bytes()))
	})

	t.Run("partial update", func(t *testing.T) {
		rec := app.do(http.MethodPut, "/api/appointments/"+lateID, []byte(`{"status": "confirmed", "_id": "hijack", "createdAt": "2000-01-01T00:00:00Z"}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		upd := decodeObj(t, rec.Body.Bytes())
		assert.Equal(t, "confirmed", upd["status"])
		assert.Equal(t, "Dentist", upd["title"])
		assert.Equal(t, "Clinic", upd["location"])
		assert.Equal(t, lateID, upd["_id"])
		assert.Equal(t, late["createdAt"], upd["createdAt"])
		assert.NotEqual(t, late["updatedAt"], upd["updatedAt"])
	})

	tests := []httpTest{
		{
			name:     "invalid type",
			method:   http.MethodPost,
			path:     "/api/appointments",
			body:     []byte(`{"title": "Yoga", "type": "invalid-type", "startDate": "2024-06-01T09:00:00Z", "endDate": "2024-06-01T10:00:00Z"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing title",
			method:   http.MethodPost,
			path:     "/api/appointments",
			body:     []byte(`{"startDate": "2024-06-01T09:00:00Z", "endDate": "2024-06-01T10:00:00Z"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "not an object",
			method:   http.MethodPost,
			path:     "/api/appointments",
			body:     []byte(`["a"]`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "invalid update",
			method:   http.MethodPut,
			path:     "/api/appointments/" + lateID,
			body:     []byte(`{"status": "postponed"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown id",
			method:   http.MethodGet,
			path:     "/api/appointments/6f0f7a2e-8a43-4a55-9b39-3a4bfe6a1c11",
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Message: "Appointment not found"}),
		},
		{
			name:     "malformed id",
			method:   http.MethodGet,
			path:     "/api/appointments/not-an-id",
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Message: "Appointment not found"}),
		},
		{
			name:     "update unknown id",
			method:   http.MethodPut,
			path:     "/api/appointments/6f0f7a2e-8a43-4a55-9b39-3a4bfe6a1c11",
			body:     []byte(`{"title": "x"}`),
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Message: "Appointment not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(tt.method, tt.path, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("invalid type message", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/api/appointments", tests[0].body)
		msg := decodeObj(t, rec.Body.Bytes())["message"]
		assert.Contains(t, msg, "Appointment validation failed")
		assert.Contains(t, msg, "type: `invalid-type` is not a valid value")
	})

	t.Run("form dates", func(t *testing.T) {
		appt := app.create(t, "/api/appointments", newAppointment("Piano", "2024-06-05T16:00", "2024-06-05T16:45:30"))
		assert.Equal(t, "2024-06-05T16:00:00Z", appt["startDate"])
		assert.Equal(t, "2024-06-05T16:45:30Z", appt["endDate"])

		appt = app.create(t, "/api/appointments", newAppointment("Field trip", "2024-06-07", "2024-06-08"))
		assert.Equal(t, "2024-06-07T00:00:00Z", appt["startDate"])
		assert.Equal(t, "2024-06-08T00:00:00Z", appt["endDate"])

		obj := newAppointment("Swim", "2024-06-06T09:00:00Z", "2024-06-06T10:00:00Z")
		obj["reminders"] = []map[string]interface{}{{"time": "2024-06-06T08:30"}, {"time": ""}}
		appt = app.create(t, "/api/appointments", obj)
		reminders := appt["reminders"].([]interface{})
		require.Len(t, reminders, 2)
		assert.Equal(t, "2024-06-06T08:30:00Z", reminders[0].(map[string]interface{})["time"])
		assert.Nil(t, reminders[1].(map[string]interface{})["time"])
	})

	t.Run("bad dates", func(t *testing.T) {
		for _, start := range []string{"tomorrow", ""} {
			rec := app.do(http.MethodPost, "/api/appointments", marshalObj(t, newAppointment("Yoga", start, "2024-06-01T10:00")))
			assert.Equal(t, http.StatusBadRequest, rec.Code, start)
		}
	})

	t.Run("delete", func(t *testing.T) {
		rec := app.do(http.MethodDelete, "/api/appointments/"+lateID)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: []byte(`{"message": "Appointment deleted successfully"}`),
		}, rec)

		rec = app.do(http.MethodGet, "/api/appointments/"+lateID)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = app.do(http.MethodDelete, "/api/appointments/"+lateID)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestListsAPI(t *testing.T) {
	app := setup(t)

	first := app.create(t, "/api/lists", map[string]interface{}{
		"title": "Groceries",
		"items": []map[string]interface{}{{"text": "milk"}, {"text": "eggs", "priority": "high"}},
	})
	second := app.create(t, "/api/lists", map[string]interface{}{"title": "Chores", "category": "household"})

	assert.Equal(t, "other", first["category"])
	items := first["items"].([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, "medium", items[0].(map[string]interface{})["priority"])
	assert.Equal(t, false, items[0].(map[string]interface{})["completed"])
	assert.Equal(t, "high", items[1].(map[string]interface{})["priority"])
	assert.Equal(t, []interface{}{}, second["items"])

	// newest first
	rec := app.do(http.MethodGet, "/api/lists")
	require.Equal(t, http.StatusOK, rec.Code)
	recs := decodeList(t, rec.Body.Bytes())
	require.Len(t, recs, 2)
	assert.Equal(t, second["_id"], recs[0]["_id"])
	assert.Equal(t, first["_id"], recs[1]["_id"])

	// items are replaced as a whole
	rec = app.do(http.MethodPut, "/api/lists/"+first["_id"].(string), []byte(`{"items": [{"text": "bread", "completed": true}]}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	upd := decodeObj(t, rec.Body.Bytes())
	assert.Equal(t, "Groceries", upd["title"])
	assert.Equal(t, []interface{}{
		map[string]interface{}{"text": "bread", "completed": true, "priority": "medium"},
	}, upd["items"])

	rec = app.do(http.MethodPost, "/api/lists", []byte(`{"title": "Bad", "items": [{"priority": "low"}]}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotesAPI(t *testing.T) {
	app := setup(t)

	older := app.create(t, "/api/notes", map[string]interface{}{"title": "Ideas", "content": "build a shed"})
	newer := app.create(t, "/api/notes", map[string]interface{}{"title": "Books", "content": "Dune", "tags": []string{"reading"}})
	assert.Equal(t, []interface{}{}, older["tags"])

	// most recently updated first
	rec := app.do(http.MethodPut, "/api/notes/"+older["_id"].(string), []byte(`{"content": "build a bigger shed"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodGet, "/api/notes")
	recs := decodeList(t, rec.Body.Bytes())
	require.Len(t, recs, 2)
	assert.Equal(t, older["_id"], recs[0]["_id"])
	assert.Equal(t, newer["_id"], recs[1]["_id"])

	tests := []httpTest{
		{
			name:     "blank content",
			method:   http.MethodPost,
			path:     "/api/notes",
			body:     []byte(`{"title": "Empty", "content": "   "}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "empty body",
			method:   http.MethodPost,
			path:     "/api/notes",
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, app.do(tt.method, tt.path, tt.body))
		})
	}
}

func TestErrandsAPI(t *testing.T) {
	app := setup(t)

	errand := app.create(t, "/api/errands", map[string]interface{}{
		"title":   "Birthday gift",
		"type":    "gift",
		"dueDate": "2024-07-01T00:00:00Z",
		"results": []map[string]interface{}{{"item": "Lego set", "price": "$49"}},
	})
	assert.Equal(t, "pending", errand["status"])
	assert.Equal(t, "medium", errand["priority"])
	assert.Equal(t, "2024-07-01T00:00:00Z", errand["dueDate"])
	results := errand["results"].([]interface{})
	require.Len(t, results, 1)
	assert.NotEmpty(t, results[0].(map[string]interface{})["addedAt"])

	// null clears the due date
	rec := app.do(http.MethodPut, "/api/errands/"+errand["_id"].(string), []byte(`{"dueDate": null, "status": "in-progress"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	upd := decodeObj(t, rec.Body.Bytes())
	assert.Nil(t, upd["dueDate"])
	assert.Equal(t, "in-progress", upd["status"])
	assert.Equal(t, results, upd["results"])

	t.Run("form dates", func(t *testing.T) {
		id := errand["_id"].(string)
		rec := app.do(http.MethodPut, "/api/errands/"+id, []byte(`{"dueDate": "2024-07-15"}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "2024-07-15T00:00:00Z", decodeObj(t, rec.Body.Bytes())["dueDate"])

		rec = app.do(http.MethodPut, "/api/errands/"+id, []byte(`{"dueDate": "2024-07-15T18:30"}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "2024-07-15T18:30:00Z", decodeObj(t, rec.Body.Bytes())["dueDate"])

		// empty clears the due date
		rec = app.do(http.MethodPut, "/api/errands/"+id, []byte(`{"dueDate": ""}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Nil(t, decodeObj(t, rec.Body.Bytes())["dueDate"])

		created := app.create(t, "/api/errands", map[string]interface{}{"title": "Pick up cake", "dueDate": ""})
		assert.Nil(t, created["dueDate"])

		rec = app.do(http.MethodPut, "/api/errands/"+id, []byte(`{"dueDate": "next week"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestErrandsAPI_ordering(t *testing.T) {
	app := setup(t)

	var ids []interface{}
	for _, title := range []string{"Post office", "Dry cleaning", "Pharmacy"} {
		ids = append(ids, app.create(t, "/api/errands", map[string]interface{}{"title": title})["_id"])
	}

	rec := app.do(http.MethodGet, "/api/errands")
	require.Equal(t, http.StatusOK, rec.Code)
	recs := decodeList(t, rec.Body.Bytes())
	require.Len(t, recs, 3)
	// newest first
	assert.Equal(t, []interface{}{ids[2], ids[1], ids[0]}, []interface{}{recs[0]["_id"], recs[1]["_id"], recs[2]["_id"]})
	assert.Greater(t, recs[0]["createdAt"], recs[1]["createdAt"])
}

func TestCreateRetrieveRoundTrip(t *testing.T) {
	app := setup(t)

	payloads := map[string]map[string]interface{}{
		"/api/appointments": newAppointment("Dentist", "2024-06-03T10:00:00Z", "2024-06-03T11:00:00Z"),
		"/api/lists":        {"title": "Groceries", "items": []map[string]interface{}{{"text": "milk"}}},
		"/api/notes":        {"title": "Ideas", "content": "build a shed", "tags": []string{"diy"}},
		"/api/emails":       newEmail("Hello"),
		"/api/errands":      {"title": "Book flights", "type": "booking"},
	}
	for path, payload := range payloads {
		t.Run(path, func(t *testing.T) {
			created := app.create(t, path, payload)
			for _, key := range []string{"_id", "createdAt", "updatedAt"} {
				assert.NotEmpty(t, created[key], key)
			}

			rec := app.do(http.MethodGet, path+"/"+created["_id"].(string))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, created, decodeObj(t, rec.Body.Bytes()))
		})
	}
}
