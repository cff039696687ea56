package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"d23/internal/config"
	"d23/internal/logging"
	"d23/internal/types"
)

const defaultBaseURL = "https://api.d23.ai"

// sendTimeout covers model-backed calls (chat sends, image analysis,
// transcription), which routinely outlive the default request timeout.
const sendTimeout = 120 * time.Second

type Client struct {
	baseURL   string
	tokenPath string
	token     string
	http      *http.Client
	log       logging.Logger
}

func New(baseURL string) (*Client, error) {
	tokenPath, err := config.TokenPath()
	if err != nil {
		return nil, err
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		tokenPath: tokenPath,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: logging.Nop(),
	}
	_ = c.loadToken()
	return c, nil
}

func NewWithBaseURL(baseURL, token string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		tokenPath: "",
		token:     token,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: logging.Nop(),
	}
}

func (c *Client) SetLogger(log logging.Logger) {
	if log == nil {
		log = logging.Nop()
	}
	c.log = log
}

func (c *Client) logger() logging.Logger {
	if c.log == nil {
		return logging.Nop()
	}
	return c.log
}

// HasToken reports whether a bearer token is available, loading it from
// the token file on first use. The identity resolver keys off this.
func (c *Client) HasToken() bool {
	if strings.TrimSpace(c.token) == "" {
		_ = c.loadToken()
	}
	return strings.TrimSpace(c.token) != ""
}

// MintSession creates a fresh anonymous web session.
func (c *Client) MintSession(ctx context.Context) (string, error) {
	var resp mintSessionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/web/session", nil, false, &resp); err != nil {
		return "", err
	}
	id := strings.TrimSpace(resp.SessionID)
	if id == "" {
		return "", errors.New("backend returned an empty session id")
	}
	return id, nil
}

// ValidateSession checks that an anonymous session still exists. Any
// error means the caller should mint a new one.
func (c *Client) ValidateSession(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return errors.New("session id is required")
	}
	return c.doJSON(ctx, http.MethodGet, "/web/session/"+url.PathEscape(sessionID), nil, false, nil)
}

func (c *Client) Conversations(ctx context.Context) ([]types.Conversation, error) {
	var resp conversationsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/chat/conversations", nil, true, &resp); err != nil {
		return nil, err
	}
	return resp.Conversations, nil
}

func (c *Client) ConversationHistory(ctx context.Context, conversationID string, page HistoryPage) ([]types.Message, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, errors.New("conversation id is required")
	}
	values := historyValues(page)
	values.Set("conversation_id", conversationID)
	var resp historyResponse
	if err := c.doJSON(ctx, http.MethodGet, "/chat/history?"+values.Encode(), nil, true, &resp); err != nil {
		return nil, err
	}
	return messagesFromWire(conversationID, resp.Messages), nil
}

func (c *Client) AnonymousHistory(ctx context.Context, sessionID string, page HistoryPage) ([]types.Message, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("session id is required")
	}
	path := "/web/chat/history/" + url.PathEscape(sessionID)
	if values := historyValues(page); len(values) > 0 {
		path += "?" + values.Encode()
	}
	var resp historyResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, false, &resp); err != nil {
		return nil, err
	}
	return messagesFromWire(sessionID, resp.Messages), nil
}

func (c *Client) SendChat(ctx context.Context, req SendChatRequest) (*SendResult, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, errors.New("message is required")
	}
	var resp sendChatResponse
	if err := c.doJSONWithTimeout(ctx, http.MethodPost, "/chat/send", req, true, &resp, sendTimeout); err != nil {
		return nil, err
	}
	result := &SendResult{
		ConversationID:   strings.TrimSpace(resp.ConversationID),
		RequiresLocation: resp.RequiresLocation,
	}
	if resp.AssistantMessage != nil {
		result.Assistant = resp.AssistantMessage.message(result.ConversationID)
	}
	if result.Assistant.Content == "" && !result.RequiresLocation {
		return nil, errors.New("backend returned no assistant message")
	}
	return result, nil
}

func (c *Client) SendWebChat(ctx context.Context, req SendWebChatRequest) (*SendResult, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, errors.New("session id is required")
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, errors.New("message is required")
	}
	var resp sendWebChatResponse
	if err := c.doJSONWithTimeout(ctx, http.MethodPost, "/web/chat", req, false, &resp, sendTimeout); err != nil {
		return nil, err
	}
	result := &SendResult{
		ConversationID:   req.SessionID,
		RequiresLocation: resp.RequiresLocation,
	}
	switch {
	case resp.AssistantMessage != nil:
		result.Assistant = resp.AssistantMessage.message(req.SessionID)
	case resp.Response != "":
		result.Assistant = types.Message{
			ConversationID: req.SessionID,
			Role:           types.RoleAssistant,
			Content:        resp.Response,
		}
	}
	if result.Assistant.Content == "" && !result.RequiresLocation {
		return nil, errors.New("backend returned no assistant message")
	}
	return result, nil
}

func (c *Client) SendImage(ctx context.Context, req SendImageRequest) (*SendResult, error) {
	if len(req.Data) == 0 {
		return nil, errors.New("image data is required")
	}
	fields := map[string]string{
		"message": req.Message,
	}
	requireAuth := true
	conversationID := strings.TrimSpace(req.ConversationID)
	if sessionID := strings.TrimSpace(req.SessionID); sessionID != "" {
		fields["session_id"] = sessionID
		requireAuth = false
		conversationID = sessionID
	} else if conversationID != "" {
		fields["conversation_id"] = conversationID
	}
	filename := strings.TrimSpace(req.Filename)
	if filename == "" {
		filename = "image"
	}
	var resp sendChatResponse
	err := c.doMultipart(ctx, "/web/chat/image", fields, filePart{
		field: "image",
		name:  filename,
		mime:  req.MIME,
		data:  req.Data,
	}, requireAuth, &resp)
	if err != nil {
		return nil, err
	}
	if id := strings.TrimSpace(resp.ConversationID); id != "" {
		conversationID = id
	}
	result := &SendResult{ConversationID: conversationID}
	if resp.AssistantMessage != nil {
		result.Assistant = resp.AssistantMessage.message(conversationID)
	}
	if result.Assistant.Content == "" {
		return nil, errors.New("backend returned no assistant message")
	}
	return result, nil
}

func (c *Client) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", errors.New("audio data is required")
	}
	if strings.TrimSpace(filename) == "" {
		filename = "audio"
	}
	var resp transcribeResponse
	err := c.doMultipart(ctx, "/web/transcribe", nil, filePart{
		field: "audio",
		name:  filename,
		data:  audio,
	}, false, &resp)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (c *Client) RenameConversation(ctx context.Context, conversationID, title string) error {
	if strings.TrimSpace(conversationID) == "" {
		return errors.New("conversation id is required")
	}
	path := "/chat/conversations/" + url.PathEscape(conversationID)
	return c.doJSON(ctx, http.MethodPut, path, renameConversationRequest{Title: title}, true, nil)
}

func (c *Client) DeleteConversation(ctx context.Context, conversationID string) error {
	if strings.TrimSpace(conversationID) == "" {
		return errors.New("conversation id is required")
	}
	path := "/chat/conversations/" + url.PathEscape(conversationID)
	return c.doJSON(ctx, http.MethodDelete, path, nil, true, nil)
}

func historyValues(page HistoryPage) url.Values {
	values := url.Values{}
	if before := strings.TrimSpace(page.Before); before != "" {
		values.Set("before", before)
	}
	if page.Limit > 0 {
		values.Set("limit", strconv.Itoa(page.Limit))
	}
	return values
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, requireAuth bool, out any) error {
	return c.doJSONWithClient(ctx, method, path, body, requireAuth, out, c.http)
}

func (c *Client) doJSONWithTimeout(ctx context.Context, method, path string, body any, requireAuth bool, out any, timeout time.Duration) error {
	client := c.http
	if timeout > 0 {
		client = &http.Client{
			Timeout:   timeout,
			Transport: c.http.Transport,
		}
	}
	return c.doJSONWithClient(ctx, method, path, body, requireAuth, out, client)
}

func (c *Client) doJSONWithClient(ctx context.Context, method, path string, body any, requireAuth bool, out any, httpClient *http.Client) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requireAuth {
		if err := c.ensureToken(); err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	requestID := logging.NewRequestID()
	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		c.logger().Debug("api request failed",
			logging.F("request_id", requestID),
			logging.F("method", method),
			logging.F("path", path),
			logging.F("error", err),
		)
		return err
	}
	defer resp.Body.Close()
	c.logger().Debug("api request",
		logging.F("request_id", requestID),
		logging.F("method", method),
		logging.F("path", path),
		logging.F("status", resp.StatusCode),
		logging.F("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type filePart struct {
	field string
	name  string
	mime  string
	data  []byte
}

func (c *Client) doMultipart(ctx context.Context, path string, fields map[string]string, file filePart, requireAuth bool, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if strings.TrimSpace(value) == "" {
			continue
		}
		if err := writer.WriteField(key, value); err != nil {
			return err
		}
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.field, file.name))
	if file.mime != "" {
		header.Set("Content-Type", file.mime)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := part.Write(file.data); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if requireAuth {
		if err := c.ensureToken(); err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	uploadClient := &http.Client{
		Timeout:   sendTimeout,
		Transport: c.http.Transport,
	}
	requestID := logging.NewRequestID()
	start := time.Now()
	resp, err := uploadClient.Do(req)
	if err != nil {
		c.logger().Debug("api upload failed",
			logging.F("request_id", requestID),
			logging.F("path", path),
			logging.F("error", err),
		)
		return err
	}
	defer resp.Body.Close()
	c.logger().Debug("api upload",
		logging.F("request_id", requestID),
		logging.F("path", path),
		logging.F("status", resp.StatusCode),
		logging.F("bytes", len(file.data)),
		logging.F("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) ensureToken() error {
	if strings.TrimSpace(c.token) == "" {
		if err := c.loadToken(); err != nil {
			return err
		}
	}
	if strings.TrimSpace(c.token) == "" {
		return errors.New("no bearer token; run 'd23 login' first")
	}
	return nil
}

func (c *Client) loadToken() error {
	if strings.TrimSpace(c.tokenPath) == "" {
		return nil
	}
	data, err := os.ReadFile(c.tokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			c.token = ""
			return nil
		}
		return err
	}
	c.token = strings.TrimSpace(string(data))
	return nil
}

func decodeAPIError(resp *http.Response) error {
	type errorPayload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	var payload errorPayload
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	message := payload.Error
	if message == "" {
		message = payload.Message
	}
	if message == "" {
		message = payload.Detail
	}
	if message == "" {
		message = resp.Status
	}
	return &APIError{StatusCode: resp.StatusCode, Message: message}
}

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// AsAPIError unwraps err to an APIError, or nil when it is a plain
// transport failure.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}
