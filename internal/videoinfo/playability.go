package videoinfo

import (
	"strings"

	"github.com/famomatic/ytresolve/internal/innertube"
)

// Classification is the reason, if any, a video cannot be played.
type Classification string

const (
	Playable        Classification = "playable"
	Private         Classification = "private"
	AgeRestricted   Classification = "age_restricted"
	LoginRequired   Classification = "login_required"
	BotChallenge    Classification = "bot_challenge"
	Paywalled       Classification = "paywalled"
	OtherUnplayable Classification = "other_unplayable"
)

type PlayabilityStatus struct {
	IsPlayable        bool           `json:"is_playable"`
	Status            string         `json:"status"`
	Classification    Classification `json:"classification"`
	IsPlayableInEmbed *bool          `json:"is_playable_in_embed,omitempty"`
	Reason            string         `json:"reason,omitempty"`
	Subreason         string         `json:"subreason,omitempty"`
	IsSponsorsOnly    bool           `json:"is_sponsors_only"`
	IsOffer           bool           `json:"is_offer"`
	ImageURL          string         `json:"image_url,omitempty"`
}

// Keyword tables are matched against the lower-cased status, reason and
// subreason. Order is significant: age and bot prompts also ask to sign in.
var classificationKeywords = []struct {
	class    Classification
	keywords []string
}{
	{Private, []string{
		"video is private", "private video", "приватн", "privates video", "video privado",
		"vidéo privée", "vídeo privado", "非公開", "비공개",
	}},
	{BotChallenge, []string{
		"not a bot", "не робот", "kein bot", "no eres un bot", "pas un robot",
		"não é um robô", "ボットではない", "로봇이 아닙니다",
	}},
	{AgeRestricted, []string{
		"age_check", "age_verification", "confirm your age", "age-restricted", "age restricted",
		"inappropriate for some users", "возраст", "alter bestätigen", "altersbeschränk", "tu edad",
		"ton âge", "votre âge", "sua idade", "年齢", "연령",
	}},
	{LoginRequired, []string{
		"login_required", "sign in", "log in", "войдите", "anmelden", "inicia sesión",
		"connectez-vous", "faça login", "ログイン", "로그인",
	}},
	{Paywalled, []string{
		"members-only", "members only", "join this channel", "спонсор", "kanalmitglied",
		"miembros del canal", "membres de la chaîne", "membros do canal", "メンバー限定", "멤버십",
	}},
}

// Classify derives the playability state. A paywall offer renderer wins over
// every keyword match.
func Classify(status innertube.PlayabilityStatus) PlayabilityStatus {
	out := PlayabilityStatus{
		IsPlayable: status.IsOK(),
		Status:     status.Status,
	}
	if out.IsPlayable {
		out.Classification = Playable
		embed := status.PlayableInEmbed
		out.IsPlayableInEmbed = &embed
		return out
	}

	out.Reason = status.Reason
	var screen innertube.ErrorScreen
	if status.ErrorScreen != nil {
		screen = *status.ErrorScreen
	}
	if offer := screen.PlayerLegacyDesktopYpcOfferRenderer; offer != nil {
		out.IsSponsorsOnly = true
		out.IsOffer = true
		out.Subreason = offer.OfferDescription
		out.Classification = Paywalled
		return out
	}
	if msg := screen.PlayerErrorMessageRenderer; msg != nil {
		out.Subreason = msg.Subreason.String()
		if out.Reason == "" {
			out.Reason = msg.Reason.String()
		}
		if thumbs := msg.Thumbnail.Thumbnails; len(thumbs) > 0 && thumbs[0].URL != "" {
			out.ImageURL = "https:" + thumbs[0].URL
		}
	}

	out.Classification = classifyText(strings.ToLower(strings.Join([]string{out.Status, out.Reason, out.Subreason}, " ")))
	out.IsOffer = out.Classification == Paywalled
	return out
}

func classifyText(text string) Classification {
	for _, entry := range classificationKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				return entry.class
			}
		}
	}
	return OtherUnplayable
}
