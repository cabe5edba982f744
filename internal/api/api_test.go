package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"keel/config"
	"keel/internal/models"
	"keel/internal/repo"
)

func TestRequireWithoutIdentity(t *testing.T) {
	a := New(&config.Config{})
	called := false
	h := a.require(models.PermManageUsers, func(http.ResponseWriter, *http.Request) {
		called = true
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Insufficient permissions"}`, rec.Body.String())
}

func TestWriteErrMapsSentinels(t *testing.T) {
	a := New(&config.Config{})

	cases := []struct {
		err  error
		code int
	}{
		{repo.ErrNotFound, http.StatusNotFound},
		{repo.ErrForbidden, http.StatusForbidden},
		{repo.ErrConflict, http.StatusConflict},
		{repo.ErrInvalidInput, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		a.writeErr(rec, c.err)
		assert.Equal(t, c.code, rec.Code, c.err.Error())
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}

	// без dev-режима деталь внутренней ошибки наружу не уходит
	rec := httptest.NewRecorder()
	a.writeErr(rec, errors.New("secret detail"))
	assert.NotContains(t, rec.Body.String(), "secret detail")
}

func TestWriteErrDevModeDetail(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.DevMode = true
	a := New(cfg)

	rec := httptest.NewRecorder()
	a.writeErr(rec, errors.New("boom detail"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "boom detail")
}
