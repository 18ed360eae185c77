package providers

import (
	"encoding/json"
	"fmt"

	"github.com/soilextract/soilextract/internal/encode"
)

const (
	// DefaultModel is the vision model used when none is configured.
	DefaultModel = "gpt-4o-mini"

	// DefaultMaxTokens bounds the length of the model's reply.
	DefaultMaxTokens = 1500

	// DetailHigh asks the model to read images at full resolution.
	DetailHigh = "high"

	RoleUser = "user"
)

// BlockType discriminates ContentBlock variants.
type BlockType string

const (
	BlockText     BlockType = "text"
	BlockImageURL BlockType = "image_url"
)

// ChatRequest is the outbound chat-completion request body.
type ChatRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

// Message is one chat message with multimodal content.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ImageURL references an image, here always a PNG data URI.
type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail"`
}

// ContentBlock is one part of a message: either text or an image.
// Exactly one of Text or ImageURL is meaningful, as selected by Type.
type ContentBlock struct {
	Type     BlockType
	Text     string
	ImageURL ImageURL
}

// TextBlock returns a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockText, Text: text}
}

// ImageBlock returns a high-detail image content block for url.
func ImageBlock(url string) ContentBlock {
	return ContentBlock{Type: BlockImageURL, ImageURL: ImageURL{URL: url, Detail: DetailHigh}}
}

type textBlockJSON struct {
	Type BlockType `json:"type"`
	Text string    `json:"text"`
}

type imageBlockJSON struct {
	Type     BlockType `json:"type"`
	ImageURL ImageURL  `json:"image_url"`
}

// MarshalJSON writes only the fields of the selected variant.
func (b ContentBlock) MarshalJSON() ([]byte, error) {
	switch b.Type {
	case BlockText:
		return json.Marshal(textBlockJSON{Type: b.Type, Text: b.Text})
	case BlockImageURL:
		return json.Marshal(imageBlockJSON{Type: b.Type, ImageURL: b.ImageURL})
	default:
		return nil, fmt.Errorf("unknown content block type: %q", b.Type)
	}
}

// UnmarshalJSON dispatches on the "type" discriminant.
func (b *ContentBlock) UnmarshalJSON(data []byte) error {
	var head struct {
		Type BlockType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	switch head.Type {
	case BlockText:
		var v textBlockJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*b = ContentBlock{Type: BlockText, Text: v.Text}
	case BlockImageURL:
		var v imageBlockJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*b = ContentBlock{Type: BlockImageURL, ImageURL: v.ImageURL}
	default:
		return fmt.Errorf("unknown content block type: %q", head.Type)
	}
	return nil
}

// BuildRequest assembles a single user message holding the prompt followed
// by one image block per page, in the order given.
func BuildRequest(model, prompt string, maxTokens int, images []encode.PageImage) *ChatRequest {
	content := make([]ContentBlock, 0, len(images)+1)
	content = append(content, TextBlock(prompt))
	for _, img := range images {
		content = append(content, ImageBlock(img.DataURI()))
	}

	return &ChatRequest{
		Model: model,
		Messages: []Message{{
			Role:    RoleUser,
			Content: content,
		}},
		MaxTokens: maxTokens,
	}
}

// Images returns the number of image blocks in the request.
func (r *ChatRequest) Images() int {
	n := 0
	for _, m := range r.Messages {
		for _, b := range m.Content {
			if b.Type == BlockImageURL {
				n++
			}
		}
	}
	return n
}
