package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/famomatic/ytresolve/internal/cookies"
	"github.com/famomatic/ytresolve/internal/fetch"
	"github.com/famomatic/ytresolve/internal/innertube"
	"github.com/famomatic/ytresolve/internal/playerjs"
	"github.com/famomatic/ytresolve/internal/videoinfo"
)

const (
	testVideoID  = "jNQXAC9IVRw"
	testWatchURL = "https://www.youtube.com/watch?v=" + testVideoID
	testJSPath   = "/s/player/abcd1234/player_ias.vflset/en_US/base.js"

	testYTCfg = `ytcfg.set({"VISITOR_DATA":"CgtWaXNpdG9y","USER_SESSION_ID":"1234","LOGGED_IN":true,"INNERTUBE_CONTEXT":{"client":{"clientName":"WEB","clientVersion":"2.20250101.00.00"}},"WEB_PLAYER_CONTEXT_CONFIGS":{"WEB_PLAYER_CONTEXT_CONFIG_ID_KEVLAR_WATCH":{"jsUrl":"` + testJSPath + `"}}});`

	playableResponse  = `{"playabilityStatus":{"status":"OK","playableInEmbed":true},"videoDetails":{"videoId":"jNQXAC9IVRw","title":"Me at the zoo","lengthSeconds":"19","author":"jawed","channelId":"UC4QobU6STFB0P71PMvOGN5A"}}`
	paywalledResponse = `{"playabilityStatus":{"status":"UNPLAYABLE","reason":"This video requires payment to watch.","errorScreen":{"playerLegacyDesktopYpcOfferRenderer":{"itemTitle":"Movie","offerDescription":"Rent this movie"}}},"videoDetails":{"videoId":"jNQXAC9IVRw","title":"Movie"}}`

	apiResponse = `{"playabilityStatus":{"status":"OK"},"streamingData":{"formats":[{"itag":18,"url":"https://rr1.googlevideo.com/videoplayback?itag=18&n=abc"}],"adaptiveFormats":[{"itag":251,"signatureCipher":"s=fedcba&sp=sig&url=https%3A%2F%2Frr1.googlevideo.com%2Fvideoplayback%3Fitag%3D251%26n%3Dxyz"}]}}`

	testScript = `var cfg={signatureTimestamp:19876};`
)

func watchPage(playerResponse string, withConfig bool) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><script>")
	if withConfig {
		b.WriteString(testYTCfg)
	}
	b.WriteString("</script></head><body><script>var ytInitialPlayerResponse = ")
	b.WriteString(playerResponse)
	b.WriteString(";var meta = document.createElement('meta');</script></body></html>")
	return b.String()
}

type postCall struct {
	url     string
	headers http.Header
	body    *innertube.PlayerRequest
}

type stubFetcher struct {
	mu      sync.Mutex
	pages   map[string]*fetch.Response
	getErr  error
	gets    []string
	getHdrs map[string]http.Header
	post    *fetch.Response
	postErr error
	posts   []postCall
}

func (f *stubFetcher) FetchText(ctx context.Context, url string, headers http.Header, jar []cookies.Cookie) (*fetch.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets = append(f.gets, url)
	if f.getHdrs == nil {
		f.getHdrs = map[string]http.Header{}
	}
	f.getHdrs[url] = headers
	if f.getErr != nil {
		return nil, f.getErr
	}
	if resp, ok := f.pages[url]; ok {
		return resp, nil
	}
	return &fetch.Response{Status: http.StatusNotFound, StatusText: "Not Found"}, nil
}

func (f *stubFetcher) PostJSON(ctx context.Context, url string, headers http.Header, body any) (*fetch.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, _ := body.(*innertube.PlayerRequest)
	f.posts = append(f.posts, postCall{url: url, headers: headers, body: req})
	if f.postErr != nil {
		return nil, f.postErr
	}
	if f.post == nil {
		return &fetch.Response{Status: http.StatusOK, StatusText: "OK", Body: apiResponse}, nil
	}
	return f.post, nil
}

func okPage(body string) *fetch.Response {
	return &fetch.Response{Status: http.StatusOK, StatusText: "OK", Body: body}
}

type stubPlayers struct {
	script string
	err    error
	calls  int
}

func (p *stubPlayers) GetBundle(ctx context.Context, playerURL string, headers http.Header, jar []cookies.Cookie) (*playerjs.Bundle, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return playerjs.NewBundle(playerURL, p.script), nil
}

// reverser stands in for the script engine by reversing every value.
type reverser struct{}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func (reverser) DecryptN(ctx context.Context, bundle *playerjs.Bundle, v string) (string, error) {
	return reverse(v), nil
}

func (reverser) DecryptSignature(ctx context.Context, bundle *playerjs.Bundle, v string) (string, error) {
	return reverse(v), nil
}

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, f *stubFetcher, players *stubPlayers) *Engine {
	t.Helper()
	if players == nil {
		players = &stubPlayers{script: testScript}
	}
	e, err := NewEngine(Config{
		Fetcher:   f,
		Players:   players,
		Decrypter: reverser{},
		Now:       func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func resolve(t *testing.T, e *Engine, req Request) *Result {
	t.Helper()
	if req.VideoID == "" {
		req.VideoID = testVideoID
	}
	res, err := e.Resolve(context.Background(), req)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	return res
}

func lastState(res *Result) State {
	if len(res.Trace) == 0 {
		return ""
	}
	return res.Trace[len(res.Trace)-1]
}

func TestResolvePlayableVideo(t *testing.T) {
	f := &stubFetcher{pages: map[string]*fetch.Response{testWatchURL: okPage(watchPage(playableResponse, true))}}
	e := newTestEngine(t, f, nil)

	res := resolve(t, e, Request{ClientID: "android_sdkless"})
	a := res.Answer
	if a.ErrorCode != http.StatusOK || a.Message != "" || res.Err != nil {
		t.Fatalf("answer = %+v, err = %v", a, res.Err)
	}
	if a.ClientID != videoinfo.WebPageClientID || a.PlayerURL != "https://www.youtube.com"+testJSPath {
		t.Fatalf("answer client/player = %q %q", a.ClientID, a.PlayerURL)
	}
	if a.VideoInfo == nil || a.VideoInfo.Title != "Me at the zoo" || a.VideoInfo.Length != "0:19" {
		t.Fatalf("video_info = %+v", a.VideoInfo)
	}
	if len(a.DownloadURLs) != 0 {
		t.Fatalf("download_urls at top level = %d, want 0", len(a.DownloadURLs))
	}
	if len(a.RawVideoInfo) == 0 || a.WebPageCode == "" {
		t.Fatalf("raw_video_info or web_page_code missing")
	}

	bundles := a.VideoInfo.DownloadURLs
	if len(bundles) == 0 || bundles[0].ClientID != "android_sdkless" {
		t.Fatalf("download_urls = %+v", bundles)
	}
	if bundles[0].APICallingDate != "2025-03-01T12:00:00.000Z" {
		t.Fatalf("api_calling_date = %q", bundles[0].APICallingDate)
	}
	encoded, err := json.Marshal(bundles[0].StreamingData)
	if err != nil {
		t.Fatalf("marshal streaming data: %v", err)
	}
	data := string(encoded)
	if strings.Contains(data, "signatureCipher") {
		t.Fatalf("cipher left in streaming data: %s", data)
	}
	for _, want := range []string{"n=cba", "n=zyx", "sig=abcdef"} {
		if !strings.Contains(data, want) {
			t.Fatalf("streaming data %s does not contain %q", data, want)
		}
	}

	if got, want := res.Trace, []State{StateFetchingPage, StateExtractingInfo, StateExtractingConfig, StateFetchingPlayer, StateCallingAPI, StateDone}; !equalStates(got, want) {
		t.Fatalf("Trace = %v, want %v", got, want)
	}
	if res.RequestID == "" {
		t.Fatalf("RequestID is empty")
	}

	if len(f.posts) != 1 {
		t.Fatalf("API calls = %d, want 1", len(f.posts))
	}
	call := f.posts[0]
	if call.url != innertube.PlayerEndpoint {
		t.Fatalf("API url = %q", call.url)
	}
	h := call.headers
	if h.Get("X-YouTube-Client-Name") != "3" || h.Get("X-YouTube-Client-Version") != "20.10.38" {
		t.Fatalf("client headers = %v", h)
	}
	if h.Get("X-Goog-Visitor-Id") != "CgtWaXNpdG9y" || h.Get("Origin") != innertube.Origin {
		t.Fatalf("visitor/origin headers = %v", h)
	}
	if !strings.HasPrefix(h.Get("User-Agent"), "com.google.android.youtube/") {
		t.Fatalf("User-Agent = %q", h.Get("User-Agent"))
	}
	if h.Get("Authorization") != "" || h.Get("Cookie") != "" {
		t.Fatalf("unexpected auth headers without cookies: %v", h)
	}
	if call.body == nil || call.body.VideoID != testVideoID || call.body.PlaybackContext.ContentPlaybackContext.SignatureTimestamp != 19876 {
		t.Fatalf("API body = %+v", call.body)
	}

	pageHeaders := f.getHdrs[testWatchURL]
	if pageHeaders.Get("Host") != "www.youtube.com" || pageHeaders.Get("Accept-Encoding") != "gzip, deflate, br" {
		t.Fatalf("watch page headers = %v", pageHeaders)
	}
}

func TestResolveURLsWithoutParsedInfoGoToAnswer(t *testing.T) {
	f := &stubFetcher{pages: map[string]*fetch.Response{testWatchURL: okPage(watchPage(playableResponse, true))}}
	e := newTestEngine(t, f, nil)

	res := resolve(t, e, Request{ClientID: "android_sdkless", RequestedData: "urls, raw_video_info"})
	a := res.Answer
	if a.VideoInfo != nil || a.WebPageCode != "" {
		t.Fatalf("unrequested parts present: %+v", a)
	}
	if len(a.RawVideoInfo) == 0 {
		t.Fatalf("raw_video_info missing")
	}
	if len(a.DownloadURLs) != 1 || a.DownloadURLs[0].ClientID != "android_sdkless" {
		t.Fatalf("download_urls = %+v", a.DownloadURLs)
	}
}

func TestResolvePaywalledWithoutCookies(t *testing.T) {
	f := &stubFetcher{pages: map[string]*fetch.Response{testWatchURL: okPage(watchPage(paywalledResponse, true))}}
	players := &stubPlayers{script: testScript}
	e := newTestEngine(t, f, players)

	res := resolve(t, e, Request{})
	a := res.Answer
	if a.ErrorCode != http.StatusOK || a.Message != "Unable to get VIP video download URLs" {
		t.Fatalf("answer = %d %q", a.ErrorCode, a.Message)
	}
	if a.VideoInfo == nil || !a.VideoInfo.PlayabilityStatus.IsOffer {
		t.Fatalf("video_info = %+v", a.VideoInfo)
	}
	if len(f.posts) != 0 || players.calls != 0 {
		t.Fatalf("API calls = %d, player fetches = %d, want none", len(f.posts), players.calls)
	}
	if !containsState(res.Trace, StateBlocked) || lastState(res) != StateDone {
		t.Fatalf("Trace = %v", res.Trace)
	}
}

func TestResolvePaywalledWithoutURLsHasNoMessage(t *testing.T) {
	f := &stubFetcher{pages: map[string]*fetch.Response{testWatchURL: okPage(watchPage(paywalledResponse, true))}}
	e := newTestEngine(t, f, nil)

	res := resolve(t, e, Request{RequestedData: "parsed_video_info"})
	if res.Answer.ErrorCode != http.StatusOK || res.Answer.Message != "" {
		t.Fatalf("answer = %d %q", res.Answer.ErrorCode, res.Answer.Message)
	}
}

func TestResolveConfigPageProfileWithCookies(t *testing.T) {
	tvPage := `<script>ytcfg.set({"INNERTUBE_CONTEXT":{"client":{"clientName":"TVHTML5","clientVersion":"7.20250101.00.00","userAgent":"Cobalt"}},"VISITOR_DATA":"tv"});</script>`
	f := &stubFetcher{pages: map[string]*fetch.Response{
		testWatchURL:                 okPage(watchPage(playableResponse, true)),
		"https://www.youtube.com/tv": okPage(tvPage),
	}}
	e := newTestEngine(t, f, nil)

	jar := []cookies.Cookie{
		{Name: "SAPISID", Value: "sapisid", Domain: ".youtube.com"},
		{Name: "__Secure-1PAPISID", Value: "first", Domain: ".youtube.com"},
		{Name: "__Secure-3PAPISID", Value: "third", Domain: ".youtube.com"},
		{Name: "OTHER", Value: "x", Domain: ".example.com"},
	}
	res := resolve(t, e, Request{ClientID: "tv_html5", Cookies: jar})
	if res.Answer.ErrorCode != http.StatusOK {
		t.Fatalf("answer = %+v", res.Answer)
	}

	if got := f.getHdrs["https://www.youtube.com/tv"].Get("User-Agent"); got != innertube.TVHTML5Client.ConfigUserAgent {
		t.Fatalf("config page User-Agent = %q", got)
	}
	h := f.posts[0].headers
	if h.Get("X-YouTube-Client-Version") != "7.20250101.00.00" || h.Get("X-YouTube-Client-Name") != "7" {
		t.Fatalf("client headers = %v", h)
	}
	if h.Get("User-Agent") != innertube.TVHTML5Client.UserAgent+",gzip(gfe)" {
		t.Fatalf("User-Agent = %q", h.Get("User-Agent"))
	}
	if strings.Contains(h.Get("Cookie"), "OTHER") || !strings.Contains(h.Get("Cookie"), "SAPISID=sapisid") {
		t.Fatalf("Cookie = %q", h.Get("Cookie"))
	}
	if !strings.HasPrefix(h.Get("Authorization"), "SAPISIDHASH ") || h.Get("X-Youtube-Bootstrap-Logged-In") != "true" {
		t.Fatalf("auth headers = %v", h)
	}
	if !strings.Contains(string(f.posts[0].body.Context), `"TVHTML5"`) {
		t.Fatalf("API context = %s", f.posts[0].body.Context)
	}
}

func TestResolveUsesDefaultCookies(t *testing.T) {
	f := &stubFetcher{pages: map[string]*fetch.Response{testWatchURL: okPage(watchPage(paywalledResponse, true))}}
	e := newTestEngine(t, f, nil)
	e.DefaultCookies().Set([]cookies.Cookie{{Name: "SID", Value: "1", Domain: ".youtube.com"}})

	res := resolve(t, e, Request{ClientID: "android_sdkless"})
	if containsState(res.Trace, StateBlocked) {
		t.Fatalf("Trace = %v, default cookies should unblock paywalled videos", res.Trace)
	}
	if len(f.posts) != 1 {
		t.Fatalf("API calls = %d, want 1", len(f.posts))
	}
}

func TestResolveFailures(t *testing.T) {
	tests := []struct {
		name      string
		fetcher   *stubFetcher
		players   *stubPlayers
		req       Request
		wantCode  int
		wantError string
		wantMsg   string
		check     func(t *testing.T, a *Answer)
	}{
		{
			name:      "unknown client",
			fetcher:   &stubFetcher{},
			req:       Request{ClientID: "nope"},
			wantCode:  http.StatusBadRequest,
			wantError: "The client 'nope' is not found!",
		},
		{
			name:      "cookies with cookieless client",
			fetcher:   &stubFetcher{},
			req:       Request{ClientID: "web_embedded", Cookies: []cookies.Cookie{{Name: "SID", Value: "1", Domain: ".youtube.com"}}},
			wantCode:  http.StatusBadRequest,
			wantError: "Client does not support cookies",
		},
		{
			name:      "bad requested data",
			fetcher:   &stubFetcher{},
			req:       Request{RequestedData: "urls,everything"},
			wantCode:  http.StatusBadRequest,
			wantError: "Wrong 'requested_data' value: 'everything'",
		},
		{
			name:      "watch page transport error",
			fetcher:   &stubFetcher{getErr: errors.New("connection refused")},
			wantCode:  http.StatusInternalServerError,
			wantError: "Can't get video web page",
		},
		{
			name:      "watch page not found",
			fetcher:   &stubFetcher{},
			wantCode:  http.StatusNotFound,
			wantError: "Can't get video web page",
		},
		{
			name:      "watch page server error",
			fetcher:   &stubFetcher{pages: map[string]*fetch.Response{testWatchURL: {Status: http.StatusServiceUnavailable, StatusText: "Service Unavailable"}}},
			wantCode:  http.StatusServiceUnavailable,
			wantError: "Can't get video web page",
		},
		{
			name:      "no player response",
			fetcher:   &stubFetcher{pages: map[string]*fetch.Response{testWatchURL: okPage("<html></html>")}},
			wantCode:  http.StatusNotFound,
			wantError: "Can't extract raw video info from web page",
			check: func(t *testing.T, a *Answer) {
				if a.WebPageCode != "<html></html>" {
					t.Fatalf("web_page_code = %q", a.WebPageCode)
				}
			},
		},
		{
			name:      "no ytcfg",
			fetcher:   &stubFetcher{pages: map[string]*fetch.Response{testWatchURL: okPage(watchPage(playableResponse, false))}},
			wantCode:  http.StatusNotFound,
			wantError: "Can't extract the 'ytcfg' from web page",
			check: func(t *testing.T, a *Answer) {
				if a.VideoInfo == nil || len(a.RawVideoInfo) == 0 {
					t.Fatalf("partial data missing: %+v", a)
				}
			},
		},
		{
			name:     "urls disabled",
			fetcher:  &stubFetcher{pages: map[string]*fetch.Response{testWatchURL: okPage(watchPage(playableResponse, true))}},
			req:      Request{RequestedData: "parsed_video_info"},
			wantCode: http.StatusOK,
			wantMsg:  "URLs receiving/decryption is disabled",
		},
		{
			name:     "player script unavailable",
			fetcher:  &stubFetcher{pages: map[string]*fetch.Response{testWatchURL: okPage(watchPage(playableResponse, true))}},
			players:  &stubPlayers{err: errors.New("bad status code: 404")},
			wantCode: http.StatusNotFound,
			wantMsg:  "Can't get player code",
			check: func(t *testing.T, a *Answer) {
				if a.VideoInfo == nil {
					t.Fatalf("video_info missing")
				}
			},
		},
		{
			name:     "no signature timestamp",
			fetcher:  &stubFetcher{pages: map[string]*fetch.Response{testWatchURL: okPage(watchPage(playableResponse, true))}},
			players:  &stubPlayers{script: "var x=1;"},
			wantCode: http.StatusNotFound,
			wantMsg:  "Can't find signature timestamp!",
		},
		{
			name:     "config page missing",
			fetcher:  &stubFetcher{pages: map[string]*fetch.Response{testWatchURL: okPage(watchPage(playableResponse, true))}},
			req:      Request{ClientID: "tv_html5"},
			wantCode: http.StatusNotFound,
			wantMsg:  "Can't get client configuration",
		},
		{
			name: "config page without ytcfg",
			fetcher: &stubFetcher{pages: map[string]*fetch.Response{
				testWatchURL:                 okPage(watchPage(playableResponse, true)),
				"https://www.youtube.com/tv": okPage("<html></html>"),
			}},
			req:      Request{ClientID: "tv_html5"},
			wantCode: http.StatusBadRequest,
			wantMsg:  "Can't get client configuration",
		},
		{
			name: "api error status",
			fetcher: &stubFetcher{
				pages: map[string]*fetch.Response{testWatchURL: okPage(watchPage(playableResponse, true))},
				post:  &fetch.Response{Status: http.StatusForbidden, StatusText: "Forbidden"},
			},
			wantCode: http.StatusForbidden,
			wantMsg:  "Forbidden",
		},
		{
			name: "api without streaming data",
			fetcher: &stubFetcher{
				pages: map[string]*fetch.Response{testWatchURL: okPage(watchPage(playableResponse, true))},
				post:  okPage(`{"playabilityStatus":{"status":"LOGIN_REQUIRED"}}`),
			},
			wantCode: http.StatusOK,
			wantMsg:  "There are no streaming data found for this video",
			check: func(t *testing.T, a *Answer) {
				if a.VideoInfo == nil || len(a.VideoInfo.DownloadURLs) != 0 {
					t.Fatalf("video_info = %+v", a.VideoInfo)
				}
			},
		},
		{
			name: "api streaming data without adaptive formats",
			fetcher: &stubFetcher{
				pages: map[string]*fetch.Response{testWatchURL: okPage(watchPage(playableResponse, true))},
				post:  okPage(`{"streamingData":{"formats":[{"itag":18,"url":"https://rr1.googlevideo.com/videoplayback?itag=18&n=abc"}]}}`),
			},
			wantCode: http.StatusOK,
			wantMsg:  "There are some problems while fixing URLs",
			check: func(t *testing.T, a *Answer) {
				if a.VideoInfo == nil || len(a.VideoInfo.DownloadURLs) != 1 || a.VideoInfo.DownloadURLs[0].ClientID != "android_sdkless" {
					t.Fatalf("video_info = %+v", a.VideoInfo)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, tt.fetcher, tt.players)
			res := resolve(t, e, tt.req)
			a := res.Answer
			if a.ErrorCode != tt.wantCode {
				t.Fatalf("error_code = %d, want %d (%+v)", a.ErrorCode, tt.wantCode, a)
			}
			if a.ErrorMessage != tt.wantError {
				t.Fatalf("error_message = %q, want %q", a.ErrorMessage, tt.wantError)
			}
			if a.Message != tt.wantMsg {
				t.Fatalf("message = %q, want %q", a.Message, tt.wantMsg)
			}
			if tt.wantError != "" && (res.Err == nil || lastState(res) != StateFailed) {
				t.Fatalf("Err = %v, Trace = %v", res.Err, res.Trace)
			}
			if tt.check != nil {
				tt.check(t, a)
			}
		})
	}
}

func TestResolveWatchPageStatusIsUpstream(t *testing.T) {
	e := newTestEngine(t, &stubFetcher{}, nil)
	res := resolve(t, e, Request{})
	if res.Err == nil || res.Err.Kind != KindUpstream || res.Err.Status != http.StatusNotFound {
		t.Fatalf("Err = %+v, want upstream 404", res.Err)
	}
}

func TestResolveWithoutURLsHasNoDownloadBundles(t *testing.T) {
	withStreaming := `{"playabilityStatus":{"status":"OK"},"streamingData":{"formats":[{"itag":18,"signatureCipher":"s=abc&url=https%3A%2F%2Frr1.googlevideo.com%2Fvideoplayback"}]},"videoDetails":{"videoId":"jNQXAC9IVRw","title":"Me at the zoo"}}`
	f := &stubFetcher{pages: map[string]*fetch.Response{testWatchURL: okPage(watchPage(withStreaming, true))}}
	e := newTestEngine(t, f, nil)

	res := resolve(t, e, Request{RequestedData: "parsed_video_info"})
	a := res.Answer
	if a.VideoInfo == nil {
		t.Fatalf("video_info missing: %+v", a)
	}
	if len(a.VideoInfo.DownloadURLs) != 0 || len(a.DownloadURLs) != 0 {
		t.Fatalf("download_urls = %+v / %+v, want none", a.VideoInfo.DownloadURLs, a.DownloadURLs)
	}
	if len(f.posts) != 0 {
		t.Fatalf("API calls = %d, want 0", len(f.posts))
	}
}

func TestResolveCancelledContext(t *testing.T) {
	f := &stubFetcher{getErr: context.Canceled}
	e := newTestEngine(t, f, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := e.Resolve(ctx, Request{VideoID: testVideoID})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Resolve() error = %v, want context.Canceled", err)
	}
	if res == nil || res.Answer == nil || res.Answer.ErrorCode != http.StatusInternalServerError {
		t.Fatalf("Resolve() result = %+v", res)
	}
}

func TestNewEngineRequiresFetcher(t *testing.T) {
	if _, err := NewEngine(Config{}); err == nil {
		t.Fatalf("NewEngine() error = nil, want error")
	}
}

func TestParseRequestedData(t *testing.T) {
	tests := []struct {
		in      string
		has     []string
		missing []string
		wantErr bool
	}{
		{in: "", has: []string{DataWebPage, DataURLs, DataParsedVideoInfo}},
		{in: " , ", has: []string{DataAll}},
		{in: "urls, parsed_video_info,urls", has: []string{DataURLs, DataParsedVideoInfo}, missing: []string{DataWebPage, DataRawVideoInfo}},
		{in: "all", has: []string{DataRawVideoInfo}},
		{in: "urls,video", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRequestedData(tt.in)
			if tt.wantErr {
				var pe *Error
				if !errors.As(err, &pe) || pe.Status != http.StatusBadRequest || pe.Message != "Wrong 'requested_data' value: 'video'" {
					t.Fatalf("ParseRequestedData(%q) error = %v", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRequestedData(%q) error = %v", tt.in, err)
			}
			for _, token := range tt.has {
				if !got.Has(token) {
					t.Fatalf("Has(%q) = false, want true", token)
				}
			}
			for _, token := range tt.missing {
				if got.Has(token) {
					t.Fatalf("Has(%q) = true, want false", token)
				}
			}
		})
	}
}

func equalStates(a, b []State) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func containsState(list []State, s State) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
