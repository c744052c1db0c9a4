package innertube

const (
	// Origin is the platform origin used for API calls and auth hashes.
	Origin = "https://www.youtube.com"

	// DesktopUserAgent is sent when downloading watch pages and player scripts.
	DesktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	cobaltUserAgent       = "Mozilla/5.0 (ChromiumStylePlatform) Cobalt/25.lts.30.1034943-gold (unlike Gecko), Unknown_TV_Unknown_0/Unknown (Unknown, Unknown)"
	cobaltConfigUserAgent = "Mozilla/5.0 (ChromiumStylePlatform) Cobalt/Version"
)

var (
	// TVHTML5SimplyClient is the simplified TV client.
	TVHTML5SimplyClient = ClientProfile{
		ID:          "tv_html5_simply",
		DisplayName: "TV HTML5 SIMPLY",
		Context: &Context{
			Client: ClientInfo{
				ClientName:     "TVHTML5_SIMPLY",
				ClientVersion:  "1.0",
				AcceptLanguage: "en",
				TimeZone:       "UTC",
			},
		},
		NameInHeaders: "75",
	}

	// TVHTML5Client is the Smart TV client. Its context comes from the /tv page.
	TVHTML5Client = ClientProfile{
		ID:              "tv_html5",
		DisplayName:     "TV HTML5",
		SupportsCookies: true,
		NameInHeaders:   "7",
		UserAgent:       cobaltUserAgent,
		ConfigUserAgent: cobaltConfigUserAgent,
		ConfigURL:       Origin + "/tv",
	}

	// TVEmbeddedClient is the embedded TV player.
	TVEmbeddedClient = ClientProfile{
		ID:              "tv_embedded",
		DisplayName:     "TV EMBEDDED",
		SupportsCookies: true,
		Context: &Context{
			Client: ClientInfo{
				ClientName:     "TVHTML5_SIMPLY_EMBEDDED_PLAYER",
				ClientVersion:  "2.0",
				AcceptLanguage: "en",
				TimeZone:       "UTC",
			},
			ThirdParty: &ThirdParty{EmbedURL: Origin + "/"},
		},
		NameInHeaders: "85",
	}

	// WebEmbeddedClient is for embedded players. Its context comes from the embed page.
	WebEmbeddedClient = ClientProfile{
		ID:              "web_embedded",
		DisplayName:     "WEB EMBEDDED",
		NameInHeaders:   "56",
		UserAgent:       cobaltUserAgent,
		ConfigUserAgent: cobaltConfigUserAgent,
		ConfigURL:       Origin + "/embed/{video_id}?html5=1",
	}

	// AndroidSDKLessClient mimics the Android app without SDK attestation.
	AndroidSDKLessClient = ClientProfile{
		ID:              "android_sdkless",
		DisplayName:     "ANDROID SDKLESS",
		SupportsCookies: true,
		Default:         true,
		Context: &Context{
			Client: ClientInfo{
				ClientName:    "ANDROID",
				ClientVersion: "20.10.38",
				UserAgent:     "com.google.android.youtube/20.10.38 (Linux; U; Android 11) gzip",
				OsName:        "Android",
				OsVersion:     "11",
			},
		},
		NameInHeaders: "3",
	}
)

// cookieProfileID is picked by automatic selection when cookies are present.
const cookieProfileID = "android_sdkless"

// catalogue lists every persona in presentation order.
var catalogue = []ClientProfile{
	TVHTML5SimplyClient,
	TVHTML5Client,
	TVEmbeddedClient,
	WebEmbeddedClient,
	AndroidSDKLessClient,
}
