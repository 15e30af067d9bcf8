package security

import (
	"net/http/httptest"
	"testing"
)

var testSignatures = []string{
	"facebookexternalhit",
	"twitterbot",
	"linkedinbot",
	"whatsapp",
	"discordbot",
	"telegrambot",
	"slackbot",
	"skypeuripreview",
}

func TestBotDetector_IsBot(t *testing.T) {
	bd := NewBotDetector(testSignatures)

	tests := []struct {
		name      string
		userAgent string
		wantBot   bool
		wantSig   string
	}{
		{
			name:      "Facebook crawler",
			userAgent: "facebookexternalhit/1.1 (+http://www.facebook.com/externalhit_uatext.php)",
			wantBot:   true,
			wantSig:   "facebookexternalhit",
		},
		{
			name:      "Twitter crawler",
			userAgent: "Twitterbot/1.0",
			wantBot:   true,
			wantSig:   "twitterbot",
		},
		{
			name:      "WhatsApp mixed case",
			userAgent: "WhatsApp/2.23.20.0",
			wantBot:   true,
			wantSig:   "whatsapp",
		},
		{
			name:      "Discord crawler",
			userAgent: "Mozilla/5.0 (compatible; Discordbot/2.0; +https://discordapp.com)",
			wantBot:   true,
			wantSig:   "discordbot",
		},
		{
			name:      "Telegram crawler",
			userAgent: "TelegramBot (like TwitterBot)",
			wantBot:   true,
			wantSig:   "twitterbot", // substring match hits whichever signature comes first
		},
		{
			name:      "Plain Chrome browser",
			userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
			wantBot:   false,
		},
		{
			name:      "Empty user agent",
			userAgent: "",
			wantBot:   false,
		},
		{
			name:      "curl is not a preview crawler",
			userAgent: "curl/8.4.0",
			wantBot:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotBot, gotSig := bd.IsBot(tt.userAgent)
			if gotBot != tt.wantBot {
				t.Errorf("IsBot(%q) = %v, want %v", tt.userAgent, gotBot, tt.wantBot)
			}
			if tt.wantBot && gotSig != tt.wantSig {
				t.Errorf("IsBot(%q) signature = %q, want %q", tt.userAgent, gotSig, tt.wantSig)
			}
		})
	}
}

func TestBotDetector_EmptyTable(t *testing.T) {
	bd := NewBotDetector(nil)
	if got, _ := bd.IsBot("Twitterbot/1.0"); got {
		t.Error("detector with empty signature table should never match")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "RemoteAddr with port",
			remoteAddr: "203.0.113.10:51234",
			want:       "203.0.113.10",
		},
		{
			name:       "X-Forwarded-For single",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.7"},
			want:       "198.51.100.7",
		},
		{
			name:       "X-Forwarded-For chain",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.2"},
			want:       "198.51.100.7",
		},
		{
			name:       "X-Real-IP",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Real-IP": "192.0.2.44"},
			want:       "192.0.2.44",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/abc123", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
