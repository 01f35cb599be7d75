package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/poofware/mono-repo/backend/services/structure-service/internal/utils"
)

const (
	// DefaultTimeout applies when no timeout is configured.
	DefaultTimeout = 30 * time.Second

	maxErrorBodyBytes = 4 << 10
)

// Client talks to the property-catalog REST service.
// It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

func NewClient(baseURL, apiToken string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ----------------------------------------------------------------
// Floors
// ----------------------------------------------------------------

func (c *Client) CreateFloor(ctx context.Context, req CreateFloorRequest) (*Floor, error) {
	var out Floor
	if err := c.doJSON(ctx, http.MethodPost, pathFloors, req, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, fmt.Errorf("create floor %d: %w", req.FloorNumber, ErrMissingID)
	}
	return &out, nil
}

func (c *Client) DeleteFloor(ctx context.Context, floorID string) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf(pathFloorByID, url.PathEscape(floorID)), nil, nil)
}

func (c *Client) ListFloors(ctx context.Context, buildingID string) ([]Floor, error) {
	var out []Floor
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf(pathBuildingFloors, url.PathEscape(buildingID)), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ----------------------------------------------------------------
// Units
// ----------------------------------------------------------------

// CreateUnit uploads one unit as multipart/form-data.
func (c *Client) CreateUnit(ctx context.Context, req CreateUnitRequest) (*Unit, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := [][2]string{
		{"building_id", req.BuildingID},
		{"floor_id", req.FloorID},
		{"plot_no", req.PlotNo},
		{"unit_type", req.UnitType},
		{"extent", strconv.FormatFloat(req.Extent, 'f', -1, 64)},
		{"villa_facing", req.VillaFacing},
	}
	for _, f := range fields {
		if err := writer.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	if req.Thumbnail != nil {
		if err := writeFile(writer, "thumbnail", *req.Thumbnail); err != nil {
			return nil, err
		}
	}
	for _, img := range req.Images {
		if err := writeFile(writer, "images", img); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, pathUnits, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	var out Unit
	if err := c.do(httpReq, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, fmt.Errorf("create unit %s: %w", req.PlotNo, ErrMissingID)
	}
	return &out, nil
}

func (c *Client) DeleteUnit(ctx context.Context, unitID string) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf(pathUnitByID, url.PathEscape(unitID)), nil, nil)
}

func (c *Client) ListUnits(ctx context.Context, buildingID string) ([]Unit, error) {
	var out []Unit
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf(pathBuildingUnits, url.PathEscape(buildingID)), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ----------------------------------------------------------------
// Server-side generation
// ----------------------------------------------------------------

func (c *Client) BulkGenerate(ctx context.Context, req BulkGenerateRequest) (*BulkGenerateResponse, error) {
	var out BulkGenerateResponse
	if err := c.doJSON(ctx, http.MethodPost, pathBulkGenerate, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ----------------------------------------------------------------
// internals
// ----------------------------------------------------------------

func writeFile(w *multipart.Writer, field string, f File) error {
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, escapeQuotes(f.Filename)))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create %s part: %w", field, err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return fmt.Errorf("write %s part: %w", field, err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	utils.Logger.WithFields(logrus.Fields{
		"method":   req.Method,
		"path":     req.URL.Path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("catalog request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil && (eb.Code != "" || eb.Message != "") {
		apiErr.Code = eb.Code
		apiErr.Message = eb.Message
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(raw))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
