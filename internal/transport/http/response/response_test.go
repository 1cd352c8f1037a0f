package response

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/baechuer/expense-tracker/internal/domain"
	pkgctx "github.com/baechuer/expense-tracker/internal/pkg/context"
)

// ---------- helpers ----------

func mustDecodeJSONLine(t *testing.T, b []byte, dst any) {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(dst); err != nil {
		t.Fatalf("decode json: %v, body=%q", err, string(b))
	}
}

func newReqWithBody(t *testing.T, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ---------- DecodeJSON tests ----------

type decodeDst struct {
	A string `json:"a"`
	B int    `json:"b"`
}

func TestDecodeJSON_OK_SingleObject(t *testing.T) {
	req := newReqWithBody(t, `{"a":"x","b":1}`)

	var dst decodeDst
	if err := DecodeJSON(req, &dst); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if dst.A != "x" || dst.B != 1 {
		t.Fatalf("unexpected dst: %+v", dst)
	}
}

func TestDecodeJSON_InvalidJSON_ReturnsInvalidJSON(t *testing.T) {
	cases := []string{`{"a":"x",`, ``, `{}{}`}
	for _, body := range cases {
		var dst decodeDst
		err := DecodeJSON(newReqWithBody(t, body), &dst)
		if !domain.Is(err, "invalid_json") {
			t.Fatalf("body=%q expected invalid_json, got %v", body, err)
		}
	}
}

func TestDecodeJSON_BodyTooLarge(t *testing.T) {
	req := newReqWithBody(t, `{"a":"`+strings.Repeat("x", 64)+`"}`)
	rr := httptest.NewRecorder()
	req.Body = http.MaxBytesReader(rr, req.Body, 16)

	var dst decodeDst
	if err := DecodeJSON(req, &dst); !domain.Is(err, "invalid_field") {
		t.Fatalf("expected invalid_field, got %v", err)
	}
}

// ---------- WriteError / status mapping tests ----------

func TestWriteError_DomainError_MapsStatusCodeAndPayload(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req = req.WithContext(pkgctx.WithRequestID(req.Context(), "req-123"))
	rr := httptest.NewRecorder()

	WriteError(rr, req, domain.ErrMissingField("email"))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("expected content-type json, got %q", ct)
	}

	var body ErrorBody
	mustDecodeJSONLine(t, rr.Body.Bytes(), &body)

	if body.Error.Code != "missing_field" {
		t.Fatalf("expected code missing_field, got %q", body.Error.Code)
	}
	if body.Message == "" || body.Message != body.Error.Message {
		t.Fatalf("expected top-level message to mirror error message, got %+v", body)
	}
	if body.Error.Meta["field"] != "email" {
		t.Fatalf("expected meta.field=email, got %+v", body.Error.Meta)
	}
	if body.Error.RequestID != "req-123" {
		t.Fatalf("expected request_id req-123, got %q", body.Error.RequestID)
	}
}

func TestWriteError_NonDomainError_HidesDetailsAndReturns500(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rr := httptest.NewRecorder()

	WriteError(rr, req, assertErr("boom"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}

	var body ErrorBody
	mustDecodeJSONLine(t, rr.Body.Bytes(), &body)

	if body.Error.Code != "internal_error" || body.Error.Message != "internal error" {
		t.Fatalf("unexpected payload: %+v", body.Error)
	}
	if strings.Contains(rr.Body.String(), "boom") {
		t.Fatalf("cause leaked: %s", rr.Body.String())
	}
}

func TestStatusFor_OverridesListedCodesOnly(t *testing.T) {
	write := StatusFor(http.StatusBadRequest, "invalid_credentials")

	rr := httptest.NewRecorder()
	write(rr, httptest.NewRequest(http.MethodPost, "/x", nil), domain.ErrInvalidCredentials())
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	write(rr, httptest.NewRequest(http.MethodPost, "/x", nil), domain.ErrTokenMissing())
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestStatusFromKind_Mapping(t *testing.T) {
	cases := []struct {
		kind domain.ErrKind
		want int
	}{
		{domain.KindValidation, http.StatusBadRequest},
		{domain.KindAuth, http.StatusUnauthorized},
		{domain.KindForbidden, http.StatusForbidden},
		{domain.KindNotFound, http.StatusNotFound},
		{domain.KindConflict, http.StatusConflict},
		{domain.KindRateLimited, http.StatusTooManyRequests},
		{domain.KindInfrastructure, http.StatusServiceUnavailable},
		{domain.KindInternal, http.StatusInternalServerError},
		{"unknown", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := statusFromKind(tc.kind); got != tc.want {
			t.Fatalf("kind=%q expected %d got %d", tc.kind, tc.want, got)
		}
	}
}

// ---------- Success helpers tests ----------

func TestWriteJSON_DoesNotOverrideExistingContentType(t *testing.T) {
	rr := httptest.NewRecorder()
	rr.Header().Set("Content-Type", "application/custom")

	WriteJSON(rr, http.StatusCreated, map[string]any{"x": 1})

	if ct := rr.Result().Header.Get("Content-Type"); ct != "application/custom" {
		t.Fatalf("expected preserve content-type, got %q", ct)
	}
}

func TestCreated_Writes201(t *testing.T) {
	rr := httptest.NewRecorder()

	Created(rr, map[string]any{"y": "z"})

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	var m map[string]any
	mustDecodeJSONLine(t, rr.Body.Bytes(), &m)
	if m["y"] != "z" {
		t.Fatalf("expected y=z, got %+v", m)
	}
}

func TestMessage_WritesMessageBody(t *testing.T) {
	rr := httptest.NewRecorder()

	Message(rr, "done")

	var m map[string]string
	mustDecodeJSONLine(t, rr.Body.Bytes(), &m)
	if rr.Code != http.StatusOK || m["message"] != "done" {
		t.Fatalf("unexpected response: %d %v", rr.Code, m)
	}
}

// ---------- tiny helper error type ----------

type assertErr string

func (e assertErr) Error() string { return string(e) }
