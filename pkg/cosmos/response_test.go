package cosmos

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/Sternrassler/docdb-client/pkg/headers"
)

const testActivityID = "8f0b6a1e-4c2d-4e8b-9a3f-2b7c5d1e0f9a"

func newTestResponse(status int, body string, h map[string]string) *http.Response {
	header := http.Header{}
	for k, v := range h {
		header.Set(k, v)
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func pageHeaders() map[string]string {
	return map[string]string{
		headers.RequestCharge: "2.5",
		headers.ActivityID:    testActivityID,
		headers.SessionToken:  "0:7",
	}
}

func TestDecodeListResponse(t *testing.T) {
	h := pageHeaders()
	h[headers.Continuation] = "tok1"
	resp := newTestResponse(http.StatusOK, `{"_rid":"abc","Users":[{"id":"u1"},{"id":"u2"}],"_count":2}`, h)

	page, err := decodeListResponse[User](resp, itemsUsers)
	if err != nil {
		t.Fatalf("decodeListResponse() error = %v", err)
	}

	if page.ResourceID != "abc" {
		t.Errorf("ResourceID = %q, want abc", page.ResourceID)
	}
	if page.Count != 2 || page.Len() != 2 {
		t.Errorf("Count = %d, Len = %d, want 2", page.Count, page.Len())
	}
	if page.Items[0].ID != "u1" || page.Items[1].ID != "u2" {
		t.Errorf("Items = %+v, want u1, u2 in order", page.Items)
	}
	if page.Charge != 2.5 {
		t.Errorf("Charge = %v, want 2.5", page.Charge)
	}
	if page.ActivityID.String() != testActivityID {
		t.Errorf("ActivityID = %s, want %s", page.ActivityID, testActivityID)
	}
	if page.SessionToken != "0:7" {
		t.Errorf("SessionToken = %q, want 0:7", page.SessionToken)
	}
	if page.Continuation() == nil || *page.Continuation() != "tok1" {
		t.Errorf("Continuation = %v, want tok1", page.Continuation())
	}

	var ids []string
	for u := range page.All() {
		ids = append(ids, u.ID)
	}
	if strings.Join(ids, ",") != "u1,u2" {
		t.Errorf("All() = %v, want [u1 u2]", ids)
	}
}

func TestDecodeListResponse_LastPage(t *testing.T) {
	resp := newTestResponse(http.StatusOK, `{"_rid":"abc","Users":[],"_count":0}`, pageHeaders())

	page, err := decodeListResponse[User](resp, itemsUsers)
	if err != nil {
		t.Fatalf("decodeListResponse() error = %v", err)
	}
	if page.Continuation() != nil {
		t.Errorf("Continuation = %q, want nil", *page.Continuation())
	}
	if page.Len() != 0 {
		t.Errorf("Len = %d, want 0", page.Len())
	}
}

func TestDecodeListResponse_MissingMetadata(t *testing.T) {
	for _, name := range []string{headers.RequestCharge, headers.ActivityID, headers.SessionToken} {
		t.Run(name, func(t *testing.T) {
			h := pageHeaders()
			delete(h, name)
			resp := newTestResponse(http.StatusOK, `{"_rid":"abc","Users":[],"_count":0}`, h)

			_, err := decodeListResponse[User](resp, itemsUsers)

			var metaErr *headers.MetadataError
			if !errors.As(err, &metaErr) {
				t.Fatalf("error = %v, want *headers.MetadataError", err)
			}
			if metaErr.Header != name {
				t.Errorf("Header = %q, want %q", metaErr.Header, name)
			}
			if !errors.Is(err, headers.ErrMissingHeader) {
				t.Errorf("error does not wrap ErrMissingHeader: %v", err)
			}
		})
	}
}

func TestDecodeListResponse_InvalidMetadata(t *testing.T) {
	tests := []struct {
		header string
		value  string
	}{
		{headers.RequestCharge, "abc"},
		{headers.RequestCharge, "-1"},
		{headers.ActivityID, "not-a-uuid"},
	}

	for _, tt := range tests {
		h := pageHeaders()
		h[tt.header] = tt.value
		resp := newTestResponse(http.StatusOK, `{"_rid":"abc","Users":[],"_count":0}`, h)

		_, err := decodeListResponse[User](resp, itemsUsers)

		var metaErr *headers.MetadataError
		if !errors.As(err, &metaErr) || metaErr.Header != tt.header {
			t.Errorf("%s=%q: error = %v, want MetadataError for the header", tt.header, tt.value, err)
		}
		if !errors.Is(err, headers.ErrInvalidHeader) {
			t.Errorf("%s=%q: error does not wrap ErrInvalidHeader", tt.header, tt.value)
		}
	}
}

func TestDecodeListResponse_BodyErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
		wantErr   error
	}{
		{"malformed json", `{"_rid":`, "", nil},
		{"missing rid", `{"Users":[],"_count":0}`, "_rid", ErrMissingField},
		{"missing items", `{"_rid":"abc","_count":0}`, "Users", ErrMissingField},
		{"wrong items key", `{"_rid":"abc","Documents":[],"_count":0}`, "Users", ErrMissingField},
		{"missing count", `{"_rid":"abc","Users":[]}`, "_count", ErrMissingField},
		{"negative count", `{"_rid":"abc","Users":[],"_count":-1}`, "_count", nil},
		{"count mismatch", `{"_rid":"abc","Users":[{"id":"u1"}],"_count":2}`, "_count", ErrCountMismatch},
		{"items not array", `{"_rid":"abc","Users":{},"_count":0}`, "Users", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := newTestResponse(http.StatusOK, tt.body, pageHeaders())

			_, err := decodeListResponse[User](resp, itemsUsers)

			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("error = %v, want *DecodeError", err)
			}
			if decodeErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", decodeErr.Field, tt.wantField)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want wrapping %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewStatusError(t *testing.T) {
	resp := newTestResponse(http.StatusNotFound,
		`{"code":"NotFound","message":"Resource Not Found"}`,
		map[string]string{headers.ActivityID: testActivityID})

	err := newStatusError(resp)

	if err.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", err.StatusCode)
	}
	if err.Code != "NotFound" || err.Message != "Resource Not Found" {
		t.Errorf("Code/Message = %q/%q", err.Code, err.Message)
	}
	if err.ActivityID != testActivityID {
		t.Errorf("ActivityID = %q, want %q", err.ActivityID, testActivityID)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("Error() = %q, want status code", err.Error())
	}
}

func TestNewStatusError_PlainBody(t *testing.T) {
	err := newStatusError(newTestResponse(http.StatusBadGateway, "upstream down", nil))

	if err.Message != http.StatusText(http.StatusBadGateway) {
		t.Errorf("Message = %q, want status text", err.Message)
	}
}
