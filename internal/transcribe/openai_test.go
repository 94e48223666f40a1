package transcribe

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOpenAIClient_Transcribe(t *testing.T) {
	var gotAuth, gotModel, gotLanguage, gotFilename, gotContentType string
	var gotAudio []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("path = %q, want /audio/transcriptions", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotModel = r.FormValue("model")
		gotLanguage = r.FormValue("language")

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		gotFilename = header.Filename
		gotContentType = header.Header.Get("Content-Type")
		gotAudio, _ = io.ReadAll(file)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "  Hola, necesito reunir al equipo  "}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "sk-test", "whisper-1", 5*time.Second)
	clip := Clip{Filename: "nota.webm", MIMEType: "audio/webm", Data: []byte("fake-audio")}

	text, err := c.Transcribe(context.Background(), clip, "es")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	if text != "Hola, necesito reunir al equipo" {
		t.Errorf("text = %q, want trimmed transcript", text)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("auth = %q, want Bearer sk-test", gotAuth)
	}
	if gotModel != "whisper-1" {
		t.Errorf("model = %q, want whisper-1", gotModel)
	}
	if gotLanguage != "es" {
		t.Errorf("language = %q, want es", gotLanguage)
	}
	if gotFilename != "nota.webm" {
		t.Errorf("filename = %q, want nota.webm", gotFilename)
	}
	if gotContentType != "audio/webm" {
		t.Errorf("content type = %q, want audio/webm", gotContentType)
	}
	if string(gotAudio) != "fake-audio" {
		t.Errorf("audio = %q, want fake-audio", gotAudio)
	}
}

func TestOpenAIClient_TranscribeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "bad audio"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "sk-test", "whisper-1", 5*time.Second)
	_, err := c.Transcribe(context.Background(), Clip{Filename: "a.mp3", Data: []byte("x")}, "es")
	if err == nil {
		t.Fatal("Transcribe returned nil error on upstream 400")
	}
}

func TestOpenAIClient_TranscribeCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "sk-test", "whisper-1", 5*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Transcribe(ctx, Clip{Filename: "a.mp3", Data: []byte("x")}, "es")
	if err == nil {
		t.Fatal("Transcribe returned nil error on cancelled context")
	}
}
