package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"google.golang.org/api/option"
	visionapi "google.golang.org/api/vision/v1"
)

// maxImageBytes rejects oversized downloads before they reach the
// annotation service.
const maxImageBytes = 4 << 20 // 4MB

// GoogleAnnotator calls the Cloud Vision API for label, text and object
// detection on a single image.
type GoogleAnnotator struct {
	svc *visionapi.Service
}

// NewGoogleAnnotator creates an annotator authenticated with an API key.
func NewGoogleAnnotator(ctx context.Context, apiKey string) (*GoogleAnnotator, error) {
	svc, err := visionapi.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("vision service: %w", err)
	}
	return &GoogleAnnotator{svc: svc}, nil
}

// Annotate sends the image for analysis and parses the response into flat
// lowercase label/object lists plus the first text block.
func (g *GoogleAnnotator) Annotate(ctx context.Context, imageData []byte) (*Annotation, error) {
	req := &visionapi.BatchAnnotateImagesRequest{
		Requests: []*visionapi.AnnotateImageRequest{{
			Image: &visionapi.Image{
				Content: base64.StdEncoding.EncodeToString(imageData),
			},
			Features: []*visionapi.Feature{
				{Type: "LABEL_DETECTION", MaxResults: 15},
				{Type: "TEXT_DETECTION", MaxResults: 5},
				{Type: "OBJECT_LOCALIZATION", MaxResults: 10},
			},
		}},
	}

	resp, err := g.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("annotate call: %w", err)
	}
	if len(resp.Responses) == 0 {
		return nil, fmt.Errorf("annotate call: empty response")
	}

	r := resp.Responses[0]
	if r.Error != nil {
		return nil, fmt.Errorf("annotate call: %s", r.Error.Message)
	}

	ann := &Annotation{}
	for _, label := range r.LabelAnnotations {
		ann.Labels = append(ann.Labels, strings.ToLower(label.Description))
	}
	for _, obj := range r.LocalizedObjectAnnotations {
		ann.Objects = append(ann.Objects, strings.ToLower(obj.Name))
	}
	if len(r.TextAnnotations) > 0 {
		// The first annotation is the full detected text block.
		ann.Text = r.TextAnnotations[0].Description
	}

	return ann, nil
}

// HTTPImageFetcher downloads listing images with a size cap. The caller
// supplies the timeout via ctx.
type HTTPImageFetcher struct {
	client *http.Client
}

// NewHTTPImageFetcher creates a fetcher with a shared HTTP client.
func NewHTTPImageFetcher() *HTTPImageFetcher {
	return &HTTPImageFetcher{client: &http.Client{}}
}

// Fetch downloads up to maxImageBytes from url; larger images are rejected.
func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("image request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download: status %d", resp.StatusCode)
	}
	if resp.ContentLength > maxImageBytes {
		return nil, fmt.Errorf("image too large: %d bytes", resp.ContentLength)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("image read: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image too large: exceeds %d bytes", maxImageBytes)
	}

	return data, nil
}
