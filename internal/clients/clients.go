// clients содержит HTTP-клиент бэкенда очереди сделок и истории сообщений.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pribylovaa/go-review-desk/internal/clients/interceptors"
	"github.com/pribylovaa/go-review-desk/internal/config"
	"github.com/pribylovaa/go-review-desk/internal/models"
)

var (
	// ErrDecode — тело ответа бэкенда не удалось разобрать.
	ErrDecode = errors.New("backend: undecodable response")
	// ErrUnavailable — бэкенд недоступен (ошибка транспорта).
	ErrUnavailable = errors.New("backend: unavailable")
)

// StatusError — ответ бэкенда с кодом вне 2xx.
type StatusError struct {
	Op     string
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: backend status %d: %s", e.Op, e.Code, e.Detail)
	}

	return fmt.Sprintf("%s: backend status %d", e.Op, e.Code)
}

// Blob — поток медиа-файла бэкенда. Body закрывает вызывающий.
type Blob struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// Backend — клиент бэкенда.
type Backend struct {
	base *url.URL
	hc   *http.Client
}

// New создаёт клиент с цепочкой интерсепторов: metadata -> timeout -> logging.
func New(cfg config.BackendConfig, log *slog.Logger) (*Backend, error) {
	return NewWithTransport(cfg, log, http.DefaultTransport)
}

// NewWithTransport — то же, что New, но с явным базовым транспортом.
func NewWithTransport(cfg config.BackendConfig, log *slog.Logger, base http.RoundTripper) (*Backend, error) {
	const op = "internal/clients/NewWithTransport"

	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%s: parse base url: %w", op, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s: base url %q is not absolute", op, cfg.BaseURL)
	}

	rt := interceptors.Chain(base,
		interceptors.WithMetadata(cfg.UserAgent),
		interceptors.WithTimeout(cfg.Timeout),
		interceptors.WithLogging(log),
	)

	return &Backend{base: u, hc: &http.Client{Transport: rt}}, nil
}

// Next запрашивает следующий необработанный элемент, исключая переданные идентичности.
// (item, false, nil) — у бэкенда нет элементов («Queue Empty»).
func (b *Backend) Next(ctx context.Context, exclude []string) (models.ReviewItem, bool, error) {
	const op = "internal/clients/Next"

	q := url.Values{}
	for _, id := range exclude {
		q.Add("exclude", id)
	}

	resp, err := b.do(ctx, http.MethodGet, b.endpoint(q, "next"), nil, nil)
	if err != nil {
		return models.ReviewItem{}, false, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(op, resp); err != nil {
		return models.ReviewItem{}, false, err
	}
	if resp.StatusCode == http.StatusNoContent {
		return models.ReviewItem{}, false, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.ReviewItem{}, false, fmt.Errorf("%s: read body: %w", op, err)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return models.ReviewItem{}, false, nil
	}

	var item models.ReviewItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return models.ReviewItem{}, false, fmt.Errorf("%s: %w: %v", op, ErrDecode, err)
	}
	if item.Filename == "" {
		return models.ReviewItem{}, false, fmt.Errorf("%s: %w: item without filename", op, ErrDecode)
	}

	return item, true, nil
}

// SubmitAction отправляет решение в POST /action.
func (b *Backend) SubmitAction(ctx context.Context, d models.Decision) error {
	const op = "internal/clients/SubmitAction"

	body, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("%s: encode: %w", op, err)
	}

	return b.post(ctx, op, b.endpoint(nil, "action"), body, d.ID.String())
}

// Tag отправляет метаданные в POST /tag/<filename> (вариант записи принятого решения).
func (b *Backend) Tag(ctx context.Context, d models.Decision) error {
	const op = "internal/clients/Tag"

	body := []byte(d.Metadata)
	if len(body) == 0 {
		body = []byte("{}")
	}

	return b.post(ctx, op, b.endpoint(nil, "tag", d.Filename), body, d.ID.String())
}

// Stats запрашивает агрегированные счётчики.
func (b *Backend) Stats(ctx context.Context) (models.Stats, error) {
	const op = "internal/clients/Stats"

	var st models.Stats
	if err := b.getJSON(ctx, op, b.endpoint(nil, "stats"), &st); err != nil {
		return models.Stats{}, err
	}

	return st, nil
}

// Messages запрашивает страницу истории (новые первыми).
func (b *Backend) Messages(ctx context.Context, hq models.HistoryQuery) (models.HistoryPage, error) {
	const op = "internal/clients/Messages"

	q := url.Values{}
	if hq.Limit > 0 {
		q.Set("limit", fmt.Sprint(hq.Limit))
	}
	if hq.Before > 0 {
		q.Set("before", hq.Before.String())
	}
	if v, ok := hq.Filter.Passed(); ok {
		q.Set("passed", v)
	}

	var recs []models.HistoryRecord
	if err := b.getJSON(ctx, op, b.endpoint(q, "messages"), &recs); err != nil {
		return models.HistoryPage{}, err
	}

	return models.HistoryPage{Records: recs}, nil
}

// Autofill запрашивает распознанный черновик сделки для сообщения.
func (b *Backend) Autofill(ctx context.Context, ts models.Timestamp) (models.TradeDraft, error) {
	const op = "internal/clients/Autofill"

	var raw json.RawMessage
	if err := b.getJSON(ctx, op, b.endpoint(nil, "autofill", ts.String()), &raw); err != nil {
		return nil, err
	}

	return models.TradeDraft(raw), nil
}

// Confirm подтверждает сообщение истории.
func (b *Backend) Confirm(ctx context.Context, ts models.Timestamp) error {
	const op = "internal/clients/Confirm"

	body, err := json.Marshal(struct {
		Timestamp models.Timestamp `json:"timestamp"`
	}{ts})
	if err != nil {
		return fmt.Errorf("%s: encode: %w", op, err)
	}

	return b.post(ctx, op, b.endpoint(nil, "confirm"), body, "")
}

// Media открывает поток /media/<filename>.
func (b *Backend) Media(ctx context.Context, filename string) (Blob, error) {
	return b.blob(ctx, "internal/clients/Media", b.endpoint(nil, "media", filename))
}

// Thumbnail открывает поток /thumbnails/<id>.png.
func (b *Backend) Thumbnail(ctx context.Context, id string) (Blob, error) {
	return b.blob(ctx, "internal/clients/Thumbnail", b.endpoint(nil, "thumbnails", id+".png"))
}

// MediaURL — абсолютный адрес медиа-файла на бэкенде.
func (b *Backend) MediaURL(filename string) string {
	return b.endpoint(nil, "media", filename)
}

func (b *Backend) blob(ctx context.Context, op, target string) (Blob, error) {
	resp, err := b.do(ctx, http.MethodGet, target, nil, nil)
	if err != nil {
		return Blob{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := checkStatus(op, resp); err != nil {
		_ = resp.Body.Close()
		return Blob{}, err
	}

	return Blob{Body: resp.Body, ContentType: resp.Header.Get("Content-Type"), Size: resp.ContentLength}, nil
}

func (b *Backend) getJSON(ctx context.Context, op, target string, dst any) error {
	resp, err := b.do(ctx, http.MethodGet, target, nil, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(op, resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrDecode, err)
	}

	return nil
}

// post отправляет JSON-тело; непустой idemKey уходит заголовком Idempotency-Key.
func (b *Backend) post(ctx context.Context, op, target string, body []byte, idemKey string) error {
	var hdr http.Header
	if idemKey != "" {
		hdr = http.Header{"Idempotency-Key": []string{idemKey}}
	}

	resp, err := b.do(ctx, http.MethodPost, target, body, hdr)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(op, resp); err != nil {
		return err
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (b *Backend) do(ctx context.Context, method, target string, body []byte, hdr http.Header) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range hdr {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.hc.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return resp, nil
}

// endpoint собирает адрес с экранированием сегментов пути.
func (b *Backend) endpoint(q url.Values, segments ...string) string {
	u := *b.base
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""

	for _, s := range segments {
		u.Path += "/" + s
	}
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	return u.String()
}

// checkStatus превращает не-2xx ответ в *StatusError, подбирая detail из JSON-тела.
func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	detail := ""
	if json.Unmarshal(raw, &body) == nil && len(body.Detail) > 0 {
		var s string
		if json.Unmarshal(body.Detail, &s) == nil {
			detail = s
		} else {
			detail = string(body.Detail)
		}
	}

	return &StatusError{Op: op, Code: resp.StatusCode, Detail: detail}
}
