package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CupSentinel/internal/model"
)

func testNotifier(url string) *TelegramNotifier {
	n := NewTelegramNotifier("TOKEN", "42", "", zerolog.Nop())
	n.BaseURL = url
	n.RetryBase = time.Millisecond
	return n
}

func TestSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	require.NoError(t, testNotifier(srv.URL).Send(context.Background(), "hello"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "hello", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestSendWithRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	require.NoError(t, testNotifier(srv.URL).SendWithRetry(context.Background(), "hi", 3))
	assert.Equal(t, int32(3), calls.Load())

	calls.Store(-100)
	err := testNotifier(srv.URL).SendWithRetry(context.Background(), "hi", 1)
	assert.Error(t, err)
}

func TestSendPhoto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendPhoto", r.URL.Path)
		assert.Equal(t, "42", r.FormValue("chat_id"))
		assert.Equal(t, "chart", r.FormValue("caption"))
		f, _, err := r.FormFile("photo")
		if !assert.NoError(t, err) {
			return
		}
		data, _ := io.ReadAll(f)
		assert.Equal(t, []byte("png-bytes"), data)
	}))
	defer srv.Close()

	require.NoError(t, testNotifier(srv.URL).SendPhoto(context.Background(), "chart", []byte("png-bytes")))
}

func TestStartPolling(t *testing.T) {
	var served atomic.Bool
	replies := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			if served.CompareAndSwap(false, true) {
				w.Write([]byte(`{"ok":true,"result":[
					{"update_id":1,"message":{"text":"/companies","chat":{"id":7}}},
					{"update_id":2,"message":{"text":" /detect apple ","chat":{"id":42}}}]}`))
				return
			}
			time.Sleep(10 * time.Millisecond)
			w.Write([]byte(`{"ok":true,"result":[]}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			replies <- body["text"]
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var commands []string
	go func() {
		testNotifier(srv.URL).StartPolling(ctx, func(cmd string) string {
			commands = append(commands, cmd)
			return "ok: " + cmd
		})
		close(done)
	}()

	select {
	case reply := <-replies:
		assert.Equal(t, "ok: /detect apple", reply)
	case <-time.After(5 * time.Second):
		t.Fatal("no reply sent")
	}
	cancel()
	<-done
	// the foreign chat's command never reached the handler
	assert.Equal(t, []string{"/detect apple"}, commands)
}

func TestFormatters(t *testing.T) {
	t0 := time.Date(2025, 3, 3, 14, 30, 0, 0, time.UTC)
	res := &model.DetectionResult{
		Company:  model.Nvidia,
		Detected: true,
		Landmarks: []model.Landmark{
			{Role: model.RoleLeftRim, Time: t0, Price: 100},
			{Role: model.RoleBreakout, Time: t0.Add(time.Hour), Price: 99},
		},
		Confidence:      0.41,
		Points:          76,
		SmoothingWindow: 3,
	}
	alert := FormatPatternAlert(res)
	assert.Contains(t, alert, "Nvidia (NVDA)")
	assert.Contains(t, alert, "left-rim")
	assert.Contains(t, alert, "Confidence: 41%")

	miss := FormatDetection(&model.DetectionResult{Company: model.Meta, Reason: "no right rim", Points: 40, SmoothingWindow: 3})
	assert.Contains(t, miss, "No pattern: no right rim")

	list := FormatCompanies(map[model.Company]int{model.Apple: 12})
	assert.Contains(t, list, "Apple (AAPL): 12 samples")
	assert.Contains(t, list, "Tesla (TSLA): 0 samples")

	assert.Equal(t, "❌ bad &lt;input&gt;", FormatError(errors.New("bad <input>")))
}
