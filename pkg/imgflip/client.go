package imgflip

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/flipkit/imgflip-mcp/internal/logger"
)

const defaultBaseURL = "https://api.imgflip.com"

// Options configures a provider client.
type Options struct {
	BaseURL     string
	Username    string
	Password    string
	Timeout     time.Duration
	Font        string
	MaxFontSize string
}

// Client talks to the Imgflip REST API. The free get_memes listing needs
// no credentials; search_memes and get_meme are premium endpoints and
// caption_image requires an account.
type Client struct {
	http        *resty.Client
	username    string
	password    string
	font        string
	maxFontSize string
}

// NewClient creates a provider client with a bounded timeout.
func NewClient(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	font := opts.Font
	if font == "" {
		font = "impact"
	}
	maxFontSize := opts.MaxFontSize
	if maxFontSize == "" {
		maxFontSize = "50"
	}

	http := resty.New()
	http.SetBaseURL(baseURL)
	http.SetTimeout(timeout)

	return &Client{
		http:        http,
		username:    opts.Username,
		password:    opts.Password,
		font:        font,
		maxFontSize: maxFontSize,
	}
}

// HasCredentials reports whether the client can call authenticated endpoints.
func (c *Client) HasCredentials() bool {
	return c.username != "" && c.password != ""
}

// GetMemes fetches the provider's popular template listing. Order in the
// listing defines each template's popularity rank.
func (c *Client) GetMemes(ctx context.Context) ([]Template, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/get_memes")
	if err != nil {
		return nil, WrapError(KindProviderUnavailable, "fetching template listing", err)
	}

	env, err := c.decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}

	var data memesData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, WrapError(KindProviderError, "malformed template listing payload", err)
	}

	templates := make([]Template, 0, len(data.Memes))
	for i, wire := range data.Memes {
		tpl, err := wire.toTemplate(i)
		if err != nil {
			return nil, WrapError(KindProviderError, "malformed template in listing", err)
		}
		templates = append(templates, tpl)
	}

	logger.Debug("Fetched %d templates from provider", len(templates))
	return templates, nil
}

// SearchMemes queries the premium template search. Result order defines
// the popularity rank within this result set.
func (c *Client) SearchMemes(ctx context.Context, query string, includeNSFW bool) ([]Template, error) {
	if !c.HasCredentials() {
		return nil, NewError(KindProviderRejected,
			"IMGFLIP_USERNAME and IMGFLIP_PASSWORD are required for template search")
	}

	form := c.credentialForm()
	form["query"] = query
	form["include_nsfw"] = boolToIntString(includeNSFW)

	resp, err := c.http.R().SetContext(ctx).SetFormData(form).Post("/search_memes")
	if err != nil {
		return nil, WrapError(KindProviderUnavailable, "searching templates", err)
	}

	env, err := c.decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}

	var data memesData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, WrapError(KindProviderError, "malformed search payload", err)
	}

	templates := make([]Template, 0, len(data.Memes))
	for i, wire := range data.Memes {
		tpl, err := wire.toTemplate(i)
		if err != nil {
			return nil, WrapError(KindProviderError, "malformed template in search results", err)
		}
		templates = append(templates, tpl)
	}

	return templates, nil
}

// GetMeme fetches a single template by its provider id.
func (c *Client) GetMeme(ctx context.Context, templateID string) (*Template, error) {
	if !c.HasCredentials() {
		return nil, NewError(KindProviderRejected,
			"IMGFLIP_USERNAME and IMGFLIP_PASSWORD are required for template lookup")
	}

	form := c.credentialForm()
	form["template_id"] = templateID

	resp, err := c.http.R().SetContext(ctx).SetFormData(form).Post("/get_meme")
	if err != nil {
		return nil, WrapError(KindProviderUnavailable, "fetching template", err)
	}

	env, err := c.decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}

	var data memeData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, WrapError(KindProviderError, "malformed template payload", err)
	}

	tpl, err := data.Meme.toTemplate(0)
	if err != nil {
		return nil, WrapError(KindProviderError, "malformed template payload", err)
	}
	return &tpl, nil
}

// CaptionImage renders a meme from a template id and ordered captions.
// The two-box form parameters are used when exactly two captions are
// given, the indexed boxes form otherwise.
func (c *Client) CaptionImage(ctx context.Context, templateID string, captions []string) (*MemeResult, error) {
	if !c.HasCredentials() {
		return nil, NewError(KindProviderRejected,
			"IMGFLIP_USERNAME and IMGFLIP_PASSWORD are required to create memes")
	}

	form := c.credentialForm()
	form["template_id"] = templateID
	form["font"] = c.font
	form["max_font_size"] = c.maxFontSize

	if len(captions) == 2 {
		form["text0"] = captions[0]
		form["text1"] = captions[1]
	} else {
		for i, text := range captions {
			form[fmt.Sprintf("boxes[%d][text]", i)] = text
		}
	}

	resp, err := c.http.R().SetContext(ctx).SetFormData(form).Post("/caption_image")
	if err != nil {
		return nil, WrapError(KindProviderUnavailable, "rendering meme", err)
	}

	env, err := c.decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}

	var data captionData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, WrapError(KindProviderError, "malformed render payload", err)
	}
	if data.URL == "" {
		return nil, NewError(KindProviderError, "provider reported success but returned no meme URL")
	}

	return &MemeResult{
		ImageURL:   data.URL,
		PageURL:    data.PageURL,
		TemplateID: templateID,
	}, nil
}

// decodeEnvelope validates HTTP status and the provider's success flag,
// returning the raw data payload for endpoint-specific decoding.
func (c *Client) decodeEnvelope(resp *resty.Response) (*apiEnvelope, error) {
	status := resp.StatusCode()
	switch {
	case status >= 500:
		return nil, Errorf(KindProviderUnavailable, "provider returned status %d", status)
	case status >= 400:
		return nil, Errorf(KindProviderRejected, "provider returned status %d", status)
	}

	var env apiEnvelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, WrapError(KindProviderError, "invalid JSON response from provider", err)
	}

	if !env.Success {
		msg := env.ErrorMessage
		if msg == "" {
			msg = "unknown provider error"
		}
		logger.Warn("Provider rejected request: %s", msg)
		return nil, NewError(KindProviderRejected, msg)
	}

	if len(env.Data) == 0 {
		return nil, NewError(KindProviderError, "provider reported success but returned no data")
	}

	return &env, nil
}

func (c *Client) credentialForm() map[string]string {
	return map[string]string{
		"username": c.username,
		"password": c.password,
	}
}

func boolToIntString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
