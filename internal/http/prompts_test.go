package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	echo "github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck/internal/model"
	"github.com/promptdeck/promptdeck/internal/service/membership"
)

type memPrompts struct {
	rows []model.Prompt
}

func (m *memPrompts) Insert(_ context.Context, p model.Prompt) error {
	m.rows = append(m.rows, p)
	return nil
}

func (m *memPrompts) ListByUserID(_ context.Context, userID string) ([]model.Prompt, error) {
	var out []model.Prompt
	for _, p := range m.rows {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPrompts) CountByUserID(_ context.Context, userID string) (int, error) {
	n := 0
	for _, p := range m.rows {
		if p.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memPrompts) Update(_ context.Context, userID string, p model.Prompt) (*model.Prompt, error) {
	for i := range m.rows {
		if m.rows[i].ID == p.ID && m.rows[i].UserID == userID {
			m.rows[i].Name = p.Name
			m.rows[i].Description = p.Description
			m.rows[i].Content = p.Content
			return &m.rows[i], nil
		}
	}
	return nil, nil
}

func (m *memPrompts) Delete(_ context.Context, userID, id string) (bool, error) {
	for i := range m.rows {
		if m.rows[i].ID == id && m.rows[i].UserID == userID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func membersFor(tier model.Membership) *membership.Service {
	customers := newMemCustomers()
	customers.rows["user_1"] = &model.Customer{UserID: "user_1", Membership: tier}
	return membership.New(customers, nil, time.Minute, nil)
}

func doCreatePrompt(t *testing.T, handler echo.HandlerFunc, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/prompts", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	require.NoError(t, handler(c))
	return rec
}

func TestCreatePromptFreeTierCap(t *testing.T) {
	prompts := &memPrompts{}
	handler := createPromptHandler(prompts, membersFor(model.MembershipFree))

	for i := 0; i < model.FreePromptLimit; i++ {
		rec := doCreatePrompt(t, handler, "user_1", `{"name":"n","content":"c"}`)
		require.Equal(t, http.StatusCreated, rec.Code, "prompt %d", i+1)
	}

	rec := doCreatePrompt(t, handler, "user_1", `{"name":"one too many","content":"c"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "prompt_limit_reached")
	assert.Len(t, prompts.rows, model.FreePromptLimit)
}

func TestCreatePromptProTierUnlimited(t *testing.T) {
	prompts := &memPrompts{}
	handler := createPromptHandler(prompts, membersFor(model.MembershipPro))

	for i := 0; i < model.FreePromptLimit+2; i++ {
		rec := doCreatePrompt(t, handler, "user_1", `{"name":"n","content":"c"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	assert.Len(t, prompts.rows, model.FreePromptLimit+2)
}

func TestCreatePromptRejectsInvalidPayload(t *testing.T) {
	prompts := &memPrompts{}
	handler := createPromptHandler(prompts, membersFor(model.MembershipPro))

	for _, body := range []string{
		`{"name":"","content":"c"}`,
		`{"name":"n","content":""}`,
		`{"name":"   ","content":"  "}`,
		`{"name":"` + strings.Repeat("x", 121) + `","content":"c"}`,
	} {
		rec := doCreatePrompt(t, handler, "user_1", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
	assert.Empty(t, prompts.rows)
}

func TestUpdatePromptIsOwnerScoped(t *testing.T) {
	prompts := &memPrompts{rows: []model.Prompt{
		{ID: "p1", UserID: "user_1", Name: "mine", Content: "c"},
	}}
	handler := updatePromptHandler(prompts)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/v1/prompts/p1", strings.NewReader(`{"name":"stolen","content":"c"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("p1")
	c.Set("user_id", "user_2")
	require.NoError(t, handler(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "mine", prompts.rows[0].Name)
}

func TestDeletePrompt(t *testing.T) {
	prompts := &memPrompts{rows: []model.Prompt{
		{ID: "p1", UserID: "user_1", Name: "mine", Content: "c"},
	}}
	handler := deletePromptHandler(prompts)

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/v1/prompts/p1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("p1")
	c.Set("user_id", "user_1")
	require.NoError(t, handler(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, prompts.rows)
}
