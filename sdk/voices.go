package desk

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/vango-go/voicedesk/pkg/core"
	"github.com/vango-go/voicedesk/pkg/core/types"
)

// VoicesService covers the voice catalogue, preview synthesis and cloning.
type VoicesService struct {
	client *Client
}

func (s *VoicesService) List(ctx context.Context) ([]types.Voice, error) {
	var voices []types.Voice
	if err := s.client.do(ctx, newRequest(http.MethodGet, "/voices/"), &voices); err != nil {
		return nil, err
	}
	return voices, nil
}

// Design synthesizes a preview of text spoken in the voice described by
// instruct.
func (s *VoicesService) Design(ctx context.Context, text, instruct string) (*types.VoiceDesign, error) {
	if strings.TrimSpace(text) == "" || strings.TrimSpace(instruct) == "" {
		return nil, core.NewInvalidRequestError("sample text and voice description are required")
	}
	r, err := newRequest(http.MethodPost, "/voices/design").withMultipart([]formField{
		{name: "text", value: text},
		{name: "instruct", value: instruct},
	})
	if err != nil {
		return nil, err
	}
	var design types.VoiceDesign
	if err := s.client.do(ctx, r, &design); err != nil {
		return nil, err
	}
	return &design, nil
}

// Register clones a voice from a reference recording and its transcript.
func (s *VoicesService) Register(ctx context.Context, name, refText, filename string, audio io.Reader) (*types.VoiceRegistration, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(refText) == "" {
		return nil, core.NewInvalidRequestError("voice name and reference text are required")
	}
	if audio == nil {
		return nil, core.NewInvalidRequestError("reference audio is required")
	}
	if filename == "" {
		filename = "reference.wav"
	}
	r, err := newRequest(http.MethodPost, "/voices/register").withMultipart([]formField{
		{name: "name", value: name},
		{name: "ref_text", value: refText},
	}, formFile{field: "file", filename: filepath.Base(filename), content: audio})
	if err != nil {
		return nil, err
	}
	var reg types.VoiceRegistration
	if err := s.client.do(ctx, r, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (s *VoicesService) Delete(ctx context.Context, id string) error {
	if err := requireID("voice id", id); err != nil {
		return err
	}
	return s.client.do(ctx, newRequest(http.MethodDelete, "/voices/{id}", id), nil)
}
