package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/document"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/submission/models"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/submission/service"
	tenantmodels "github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/tenant/models"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain"
	dErrors "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain-errors"
)

type fakePipeline struct {
	sub *models.Submission
	err error

	lastExternalID string
	lastSlot       document.Slot
	lastUpload     document.RawUpload
	lastDecision   service.ReviewDecision
}

func (f *fakePipeline) InitiateSession(_ context.Context, _ *tenantmodels.Tenant, externalID, _, _ string) (*models.Submission, error) {
	f.lastExternalID = externalID
	return f.sub, f.err
}

func (f *fakePipeline) UploadDocument(_ context.Context, _ *tenantmodels.Tenant, externalID string, slot document.Slot, upload document.RawUpload, _ document.Source) (*models.Submission, error) {
	f.lastExternalID = externalID
	f.lastSlot = slot
	f.lastUpload = upload
	return f.sub, f.err
}

func (f *fakePipeline) GetStatus(context.Context, *tenantmodels.Tenant, domain.SubmissionID) (*models.Submission, error) {
	return f.sub, f.err
}

func (f *fakePipeline) TriggerFaceMatch(context.Context, *tenantmodels.Tenant, domain.SubmissionID) (*models.Submission, error) {
	return f.sub, f.err
}

func (f *fakePipeline) DeleteDocument(_ context.Context, _ *tenantmodels.Tenant, externalID string, slot document.Slot) (*models.Submission, error) {
	f.lastExternalID = externalID
	f.lastSlot = slot
	return f.sub, f.err
}

func (f *fakePipeline) Review(_ context.Context, _ *tenantmodels.Tenant, _ domain.SubmissionID, decision service.ReviewDecision) (*models.Submission, error) {
	f.lastDecision = decision
	return f.sub, f.err
}

type fakeResolver struct {
	tenant *tenantmodels.Tenant
}

func (f *fakeResolver) ResolveCredential(_ context.Context, apiKey string) (*tenantmodels.Tenant, error) {
	if apiKey != "valid-key" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credential")
	}
	return f.tenant, nil
}

func testSubmission(t *testing.T) *models.Submission {
	t.Helper()
	sub, err := models.NewSubmission(domain.NewSubmissionID(), domain.NewTenantID(), domain.NewEndUserID(), document.SourceManual, time.Now())
	require.NoError(t, err)
	require.NoError(t, sub.SetRef(document.SlotPANCard, "tenant-pan/user/doc.png"))
	return sub
}

func newTestServer(t *testing.T) (*httptest.Server, *fakePipeline) {
	t.Helper()
	pipeline := &fakePipeline{sub: testSubmission(t)}
	resolver := &fakeResolver{tenant: &tenantmodels.Tenant{ID: domain.NewTenantID(), Name: "Acme", Status: tenantmodels.TenantStatusActive}}
	server := httptest.NewServer(NewRouter(NewHandler(pipeline, slog.Default()), resolver, nil))
	t.Cleanup(server.Close)
	return server, pipeline
}

func doJSON(t *testing.T, method, url, apiKey string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAuthentication(t *testing.T) {
	server, _ := newTestServer(t)

	t.Run("missing credential", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/v1/sessions", "", map[string]string{"external_id": "ext-1"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong credential", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/v1/sessions", "wrong-key", map[string]string{"external_id": "ext-1"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("bearer token works", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, server.URL+"/v1/sessions", bytes.NewReader([]byte(`{"external_id":"ext-1"}`)))
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer valid-key")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("health and metrics stay open", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/healthz")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, err = http.Get(server.URL + "/metrics")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestInitiateSessionEndpoint(t *testing.T) {
	t.Run("created with submission view", func(t *testing.T) {
		server, pipeline := newTestServer(t)
		resp := doJSON(t, http.MethodPost, server.URL+"/v1/sessions", "valid-key", map[string]string{"external_id": "ext-1001"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var view SubmissionResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
		assert.Equal(t, pipeline.sub.ID.String(), view.SubmissionID)
		assert.Equal(t, "PENDING", view.Status)
		assert.Equal(t, 25, view.Progress)
		assert.Contains(t, view.Documents, "pan_card")
		assert.Equal(t, "ext-1001", pipeline.lastExternalID)
	})

	t.Run("missing external id", func(t *testing.T) {
		server, _ := newTestServer(t)
		resp := doJSON(t, http.MethodPost, server.URL+"/v1/sessions", "valid-key", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed email", func(t *testing.T) {
		server, _ := newTestServer(t)
		resp := doJSON(t, http.MethodPost, server.URL+"/v1/sessions", "valid-key", map[string]string{"external_id": "ext-1", "email": "not-an-email"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func multipartUpload(t *testing.T, url, apiKey, externalID, slot string, file []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("external_id", externalID))
	require.NoError(t, writer.WriteField("slot", slot))
	part, err := writer.CreateFormFile("file", "photo.png")
	require.NoError(t, err)
	_, err = part.Write(file)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, url+"/v1/documents", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-API-Key", apiKey)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func smallPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func TestUploadEndpoint(t *testing.T) {
	t.Run("forwards the multipart payload", func(t *testing.T) {
		server, pipeline := newTestServer(t)
		resp := multipartUpload(t, server.URL, "valid-key", "ext-1001", "pan_card", smallPNG(t))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		assert.Equal(t, "ext-1001", pipeline.lastExternalID)
		assert.Equal(t, document.SlotPANCard, pipeline.lastSlot)
		assert.Equal(t, "photo.png", pipeline.lastUpload.Filename)
		assert.NotEmpty(t, pipeline.lastUpload.Bytes)
	})

	t.Run("unknown slot", func(t *testing.T) {
		server, _ := newTestServer(t)
		resp := multipartUpload(t, server.URL, "valid-key", "ext-1001", "passport", smallPNG(t))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("pipeline errors map through the envelope", func(t *testing.T) {
		server, pipeline := newTestServer(t)
		pipeline.sub = nil
		pipeline.err = dErrors.New(dErrors.CodePoorImageQuality, "confidence 40 below minimum")

		resp := multipartUpload(t, server.URL, "valid-key", "ext-1001", "pan_card", smallPNG(t))
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "poor_image_quality", body["error"])
	})
}

func TestStatusEndpoint(t *testing.T) {
	t.Run("foreign submissions come back forbidden with a generic body", func(t *testing.T) {
		server, pipeline := newTestServer(t)
		pipeline.sub = nil
		pipeline.err = dErrors.New(dErrors.CodeForbidden, "access denied")

		resp := doJSON(t, http.MethodGet, server.URL+"/v1/submissions/"+domain.NewSubmissionID().String(), "valid-key", nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "access denied", body["error_description"])
	})

	t.Run("malformed submission id", func(t *testing.T) {
		server, _ := newTestServer(t)
		resp := doJSON(t, http.MethodGet, server.URL+"/v1/submissions/not-a-uuid", "valid-key", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestReviewEndpoint(t *testing.T) {
	t.Run("forwards the decision", func(t *testing.T) {
		server, pipeline := newTestServer(t)
		resp := doJSON(t, http.MethodPost, server.URL+"/v1/submissions/"+pipeline.sub.ID.String()+"/review", "valid-key",
			map[string]any{"approve": true, "reviewer": "ops@acme.example", "note": "ok"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, pipeline.lastDecision.Approve)
		assert.Equal(t, "ops@acme.example", pipeline.lastDecision.Reviewer)
	})

	t.Run("requires a reviewer", func(t *testing.T) {
		server, pipeline := newTestServer(t)
		resp := doJSON(t, http.MethodPost, server.URL+"/v1/submissions/"+pipeline.sub.ID.String()+"/review", "valid-key",
			map[string]any{"approve": true})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDeleteEndpoint(t *testing.T) {
	server, pipeline := newTestServer(t)
	resp := doJSON(t, http.MethodDelete, server.URL+"/v1/documents?external_id=ext-1001&slot=pan_card", "valid-key", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ext-1001", pipeline.lastExternalID)
	assert.Equal(t, document.SlotPANCard, pipeline.lastSlot)
}
