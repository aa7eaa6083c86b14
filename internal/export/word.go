package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

var ErrConverterNotConfigured = errors.New("word converter is not configured")

// WordExporter renders the PDF layout and converts it to DOCX through a remote PDF-to-DOCX endpoint.
type WordExporter struct {
	pdf    *PDFExporter
	url    string
	apiKey string
	client *http.Client
}

func NewWordExporter(pdf *PDFExporter, url, apiKey string, client *http.Client) *WordExporter {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &WordExporter{pdf: pdf, url: url, apiKey: apiKey, client: client}
}

func (WordExporter) Format() string    { return FormatWord }
func (WordExporter) Extension() string { return "docx" }
func (WordExporter) MimeType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

func (e *WordExporter) Export(ctx context.Context, doc Document) ([]byte, error) {
	if e.url == "" || e.apiKey == "" {
		return nil, ErrConverterNotConfigured
	}
	rendered, err := e.pdf.Export(ctx, doc)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("inputFile", "report.pdf")
	if err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	if _, err := part.Write(rendered); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Apikey", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("convert to docx: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read converted docx: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("convert to docx: unexpected status %d", resp.StatusCode)
	}
	if len(data) == 0 {
		return nil, errors.New("convert to docx: empty response")
	}
	return data, nil
}
