// Package orchestrator drives one video resolution from the watch page to the
// repaired download URLs.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/famomatic/ytresolve/internal/cookies"
	"github.com/famomatic/ytresolve/internal/fetch"
	"github.com/famomatic/ytresolve/internal/formats"
	"github.com/famomatic/ytresolve/internal/innertube"
	"github.com/famomatic/ytresolve/internal/playerjs"
	"github.com/famomatic/ytresolve/internal/videoinfo"
	"github.com/famomatic/ytresolve/internal/webpage"
)

// State is one step of the resolution pipeline.
type State string

const (
	StateFetchingPage     State = "fetching_page"
	StateExtractingInfo   State = "extracting_info"
	StateBlocked          State = "blocked"
	StateExtractingConfig State = "extracting_config"
	StateFetchingPlayer   State = "fetching_player"
	StateCallingAPI       State = "calling_api"
	StateDone             State = "done"
	StateFailed           State = "failed"
)

// Answer is the JSON document returned to callers.
type Answer struct {
	ErrorCode    int                           `json:"error_code"`
	VideoID      string                        `json:"video_id,omitempty"`
	ClientID     string                        `json:"client_id,omitempty"`
	PlayerURL    string                        `json:"player_url,omitempty"`
	Message      string                        `json:"message,omitempty"`
	ErrorMessage string                        `json:"error_message,omitempty"`
	VideoInfo    *videoinfo.CanonicalVideoInfo `json:"video_info,omitempty"`
	DownloadURLs []videoinfo.DownloadBundle    `json:"download_urls,omitempty"`
	RawVideoInfo json.RawMessage               `json:"raw_video_info,omitempty"`
	WebPageCode  string                        `json:"web_page_code,omitempty"`
}

// Request names the video and how to resolve it.
type Request struct {
	VideoID string
	// ClientID is a registry id; blank or "auto" selects automatically.
	ClientID      string
	RequestedData string
	Cookies       []cookies.Cookie
}

// Result carries the answer and the states visited to produce it. Err is set
// for answers that stopped the pipeline early.
type Result struct {
	Answer    *Answer
	Trace     []State
	RequestID string
	Err       *Error
}

// Config wires the engine. Nil collaborators get defaults.
type Config struct {
	Fetcher   fetch.Fetcher
	Registry  innertube.Registry
	Players   playerjs.Resolver
	Decrypter formats.Decrypter
	Repairer  *formats.Repairer
	// DefaultCookies are used when a request brings none.
	DefaultCookies *cookies.Store
	// UserAgent replaces the desktop user agent on page and script downloads.
	UserAgent string
	Now       func() time.Time
	Logger    *slog.Logger
}

type Engine struct {
	fetcher   fetch.Fetcher
	registry  innertube.Registry
	players   playerjs.Resolver
	decrypter formats.Decrypter
	repairer  *formats.Repairer
	defaults  *cookies.Store
	userAgent string
	now       func() time.Time
	logger    *slog.Logger
}

func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Fetcher == nil {
		return nil, errors.New("orchestrator: nil fetcher")
	}
	e := &Engine{
		fetcher:   cfg.Fetcher,
		registry:  cfg.Registry,
		players:   cfg.Players,
		decrypter: cfg.Decrypter,
		repairer:  cfg.Repairer,
		defaults:  cfg.DefaultCookies,
		userAgent: cfg.UserAgent,
		now:       cfg.Now,
		logger:    cfg.Logger,
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.registry == nil {
		e.registry = innertube.NewRegistry()
	}
	if e.players == nil {
		e.players = playerjs.NewResolver(cfg.Fetcher, nil, playerjs.ResolverConfig{Logger: e.logger})
	}
	if e.decrypter == nil {
		e.decrypter = playerjs.NewExecutor(nil, e.logger)
	}
	if e.repairer == nil {
		e.repairer = formats.NewRepairer(e.logger)
	}
	if e.defaults == nil {
		e.defaults = cookies.NewStore()
	}
	if e.userAgent == "" {
		e.userAgent = innertube.DesktopUserAgent
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e, nil
}

// DefaultCookies exposes the process-wide cookie store.
func (e *Engine) DefaultCookies() *cookies.Store {
	return e.defaults
}

// Registry exposes the persona registry.
func (e *Engine) Registry() innertube.Registry {
	return e.registry
}

// run is the state of one resolution.
type run struct {
	*Engine
	req       Request
	requested RequestedData
	profile   innertube.ClientProfile
	jar       []cookies.Cookie
	logger    *slog.Logger
	result    *Result
}

func (r *run) enter(s State) {
	r.result.Trace = append(r.result.Trace, s)
}

func (r *run) fail(answer *Answer, err *Error) *Result {
	r.enter(StateFailed)
	answer.ErrorCode = err.Status
	answer.ErrorMessage = err.Message
	r.result.Answer = answer
	r.result.Err = err
	r.logger.Error(err.Message, "error", err.Err)
	return r.result
}

// Resolve runs the pipeline for one video. Pipeline failures are reported in
// the answer; the returned error is reserved for a cancelled context.
func (e *Engine) Resolve(ctx context.Context, req Request) (*Result, error) {
	requestID := uuid.NewString()
	r := &run{
		Engine: e,
		req:    req,
		logger: e.logger.With("video_id", req.VideoID, "request_id", requestID),
		result: &Result{RequestID: requestID},
	}

	r.jar = req.Cookies
	if len(r.jar) > 0 {
		r.logger.Info("using request cookies", "count", len(r.jar))
	} else if defaults := e.defaults.Snapshot(); len(defaults) > 0 {
		r.logger.Info("using default cookies", "count", len(defaults))
		r.jar = defaults
	}
	hasCookies := len(r.jar) > 0

	profile, err := e.registry.Resolve(req.ClientID, hasCookies)
	if err != nil {
		return r.fail(&Answer{}, clientError(fmt.Sprintf("The client '%s' is not found!", req.ClientID), err)), nil
	}
	r.profile = profile
	r.logger = r.logger.With("client", profile.ID)

	if !profile.SupportsCookies && hasCookies {
		return r.fail(&Answer{ClientID: profile.ID}, clientError("Client does not support cookies", nil)), nil
	}

	requested, err := ParseRequestedData(req.RequestedData)
	if err != nil {
		var pe *Error
		errors.As(err, &pe)
		return r.fail(&Answer{}, pe), nil
	}
	r.requested = requested

	res := r.resolve(ctx)
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

func (r *run) resolve(ctx context.Context) *Result {
	videoID := r.req.VideoID
	getURLs := r.requested.Has(DataURLs)
	watchURL := webpage.BaseURL + "/watch?v=" + videoID

	r.enter(StateFetchingPage)
	r.logger.Info("downloading video web page")
	fetchedAt := r.now()
	pageResp, err := r.fetcher.FetchText(ctx, watchURL, r.pageHeaders(), r.jar)
	switch {
	case err != nil:
		return r.fail(&Answer{VideoID: videoID, ClientID: videoinfo.WebPageClientID},
			internalError("Can't get video web page", err))
	case !pageResp.OK():
		return r.fail(&Answer{VideoID: videoID, ClientID: videoinfo.WebPageClientID},
			upstreamError(pageResp.Status, "Can't get video web page", fmt.Errorf("watch page status %d", pageResp.Status)))
	case pageResp.Body == "":
		return r.fail(&Answer{VideoID: videoID, ClientID: videoinfo.WebPageClientID},
			internalError("Can't get video web page", errors.New("empty watch page")))
	}
	page := webpage.ParsePage(pageResp.Body, fetchedAt)

	r.enter(StateExtractingInfo)
	raw, err := webpage.PlayerResponse(page.HTML)
	var info *videoinfo.CanonicalVideoInfo
	if err == nil {
		info, err = videoinfo.Normalize(raw)
	}
	if err != nil {
		answer := &Answer{VideoID: videoID, ClientID: videoinfo.WebPageClientID}
		if r.requested.Has(DataWebPage) {
			answer.WebPageCode = page.HTML
		}
		return r.fail(answer, notFoundError("Can't extract raw video info from web page", err))
	}
	if info.Title != "" {
		r.logger.Info("video found", "title", info.Title)
	} else {
		r.logger.Warn("video title is not detected")
	}
	if info.PlayabilityStatus.IsSponsorsOnly {
		r.logger.Warn("sponsors only video")
	}

	answer := &Answer{
		VideoID:   videoID,
		ClientID:  videoinfo.WebPageClientID,
		PlayerURL: page.PlayerURL,
	}
	var apiBundle *videoinfo.DownloadBundle

	if info.PlayabilityStatus.IsOffer && len(r.jar) == 0 {
		r.enter(StateBlocked)
		answer.ErrorCode = http.StatusOK
		if getURLs {
			answer.Message = "Unable to get VIP video download URLs"
		}
	} else {
		r.enter(StateExtractingConfig)
		if page.Config == nil {
			partial := &Answer{VideoID: videoID, ClientID: videoinfo.WebPageClientID}
			r.attach(partial, info, raw, page.HTML)
			return r.fail(partial, notFoundError("Can't extract the 'ytcfg' from web page", webpage.ErrNoConfigFound))
		}
		if getURLs {
			answer.ErrorCode, answer.Message, apiBundle = r.fetchDownloadURLs(ctx, page)
		} else {
			answer.ErrorCode = http.StatusOK
			answer.Message = "URLs receiving/decryption is disabled"
			r.logger.Info(answer.Message)
		}
	}

	if apiBundle != nil {
		if r.requested.Has(DataParsedVideoInfo) {
			info.PrependDownloadBundle(*apiBundle)
		} else {
			answer.DownloadURLs = append([]videoinfo.DownloadBundle{*apiBundle}, answer.DownloadURLs...)
		}
	}
	r.attach(answer, info, raw, page.HTML)

	if answer.Message != "" && answer.ErrorCode != http.StatusOK {
		r.result.Err = &Error{Kind: kindForStatus(answer.ErrorCode), Status: answer.ErrorCode, Message: answer.Message}
	}
	r.enter(StateDone)
	r.result.Answer = answer
	return r.result
}

// fetchDownloadURLs covers the player script, the persona configuration and
// the API call. It never fails the answer; problems become its status and message.
func (r *run) fetchDownloadURLs(ctx context.Context, page *webpage.Page) (int, string, *videoinfo.DownloadBundle) {
	r.enter(StateFetchingPlayer)
	var bundle *playerjs.Bundle
	if page.PlayerURL != "" {
		b, err := r.players.GetBundle(ctx, page.PlayerURL, r.scriptHeaders(), r.jar)
		if err != nil {
			r.logger.Warn("player script download failed", "player_url", page.PlayerURL, "error", err)
		} else {
			bundle = b
		}
	}
	if bundle == nil {
		msg := "Can't get player code"
		r.logger.Error(msg)
		return http.StatusNotFound, msg, nil
	}

	r.enter(StateCallingAPI)
	visitorData := page.Config.VisitorData()
	if visitorData == "" {
		msg := "Can't get visitor data from the 'ytcfg'"
		r.logger.Error(msg)
		return http.StatusNotFound, msg, nil
	}

	r.logger.Info("preparing API configuration")
	clientContext, clientVersion, contextUA, status := r.clientContext(ctx)
	if status != http.StatusOK {
		msg := "Can't get client configuration"
		r.logger.Error(msg, "status", status)
		return status, msg, nil
	}

	sts, err := webpage.SignatureTimestamp(bundle.Script)
	if err != nil {
		msg := "Can't find signature timestamp!"
		r.logger.Error(msg)
		return http.StatusNotFound, msg, nil
	}

	headers := http.Header{}
	headers.Set("Origin", innertube.Origin)
	headers.Set("X-Goog-Visitor-Id", visitorData)
	headers.Set("X-YouTube-Client-Name", r.profile.NameInHeaders)
	headers.Set("X-YouTube-Client-Version", clientVersion)
	if r.profile.UserAgent != "" {
		headers.Set("User-Agent", r.profile.UserAgent+",gzip(gfe)")
	} else if contextUA != "" {
		headers.Set("User-Agent", contextUA)
	}
	if r.profile.SupportsCookies && len(r.jar) > 0 {
		filtered := cookies.FilterForURL(r.jar, innertube.PlayerEndpoint)
		if v := cookies.HeaderValue(filtered); v != "" {
			headers.Set("Cookie", v)
		}
		session := innertube.SessionInfo{
			UserSessionID: page.Config.UserSessionID(),
			LoggedIn:      page.Config.LoggedIn(),
		}
		for k, vals := range innertube.SignRequest(filtered, session, r.now()) {
			headers[k] = vals
		}
	}

	body := innertube.NewPlayerRequest(clientContext, r.req.VideoID, sts, r.profile.Params)
	r.logger.Info("calling player API")
	calledAt := r.now()
	resp, err := r.fetcher.PostJSON(ctx, innertube.PlayerEndpoint, headers, body)
	if err != nil {
		r.logger.Error("player API call failed", "error", err)
		return http.StatusInternalServerError, "Player API call failed", nil
	}

	apiBundle := videoinfo.NewDownloadBundle(r.profile.ID, calledAt)
	if !resp.OK() {
		r.logger.Error("player API returned an error", "status", resp.Status, "status_text", resp.StatusText)
		return resp.Status, resp.StatusText, nil
	}

	streaming := gjson.Get(resp.Body, "streamingData")
	var streamingData map[string]any
	if streaming.IsObject() {
		if err := json.Unmarshal([]byte(streaming.Raw), &streamingData); err != nil {
			r.logger.Warn("streaming data is malformed", "error", err)
			streamingData = nil
		}
	}
	if len(streamingData) == 0 {
		r.logger.Warn(msgNoStreamingData)
		return http.StatusOK, msgNoStreamingData, nil
	}

	apiBundle.StreamingData = streamingData
	report, ok := r.repairer.Repair(ctx, streamingData, bundle, r.decrypter)
	if !ok {
		r.logger.Warn(msgRepairProblems,
			"repaired", report.Repaired, "skipped", report.Skipped, "failed", report.Failed)
		return http.StatusOK, msgRepairProblems, &apiBundle
	}
	return http.StatusOK, "", &apiBundle
}

const (
	msgNoStreamingData = "There are no streaming data found for this video"
	msgRepairProblems  = "There are some problems while fixing URLs"
)

// clientContext returns the innertube context for the persona, downloading
// its configuration page when it has no fixed one.
func (r *run) clientContext(ctx context.Context) (json.RawMessage, string, string, int) {
	p := r.profile
	if !p.NeedsConfigPage() {
		raw, err := innertube.ContextJSON(p)
		if err != nil {
			r.logger.Error("client context is not serializable", "error", err)
			return nil, "", "", http.StatusInternalServerError
		}
		return raw, p.Context.Client.ClientVersion, p.Context.Client.UserAgent, http.StatusOK
	}

	headers := http.Header{}
	if p.ConfigUserAgent != "" {
		headers.Set("User-Agent", p.ConfigUserAgent)
	} else if p.UserAgent != "" {
		headers.Set("User-Agent", p.UserAgent)
	}
	resp, err := r.fetcher.FetchText(ctx, p.ConfigPageURL(r.req.VideoID), headers, r.jar)
	if err != nil {
		r.logger.Error("configuration page download failed", "error", err)
		return nil, "", "", http.StatusInternalServerError
	}
	if !resp.OK() {
		return nil, "", "", resp.Status
	}
	cfg, err := webpage.Config(resp.Body)
	if err != nil {
		return nil, "", "", http.StatusBadRequest
	}
	raw := cfg.InnertubeContext()
	if raw == nil {
		return nil, "", "", http.StatusBadRequest
	}
	return raw, cfg.ClientVersion(), cfg.ContextUserAgent(), http.StatusOK
}

// attach adds the requested optional parts to answer.
func (r *run) attach(answer *Answer, info *videoinfo.CanonicalVideoInfo, raw json.RawMessage, html string) {
	if r.requested.Has(DataParsedVideoInfo) {
		answer.VideoInfo = info
	}
	if r.requested.Has(DataRawVideoInfo) {
		answer.RawVideoInfo = raw
	}
	if r.requested.Has(DataWebPage) {
		answer.WebPageCode = html
	}
}

func (r *run) pageHeaders() http.Header {
	h := r.scriptHeaders()
	h.Set("Host", "www.youtube.com")
	return h
}

func (r *run) scriptHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept", "*/*")
	h.Set("Accept-Encoding", "gzip, deflate, br")
	h.Set("User-Agent", r.userAgent)
	return h
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusBadRequest:
		return KindClient
	case status >= http.StatusInternalServerError:
		return KindInternal
	default:
		return KindUpstream
	}
}
