package tikwm_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"soundminer/internal/services/tikwm"
)

func TestResolveVideoPost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostForm.Get("url"); got != "https://www.tiktok.com/@user/video/1" {
			t.Errorf("url form field = %q", got)
		}
		if got := r.PostForm.Get("hd"); got != "1" {
			t.Errorf("hd form field = %q", got)
		}
		w.Write([]byte(`{
            "code": 0,
            "data": {
                "play": "https://cdn.example/play.mp4",
                "music": "https://cdn.example/sound.mp3",
                "duration": 21.4,
                "music_info": {"title": "original sound", "author": "user"}
            }
        }`))
	}))
	defer server.Close()

	client := tikwm.New(server.URL, 5)
	res, err := client.Resolve(context.Background(), "https://www.tiktok.com/@user/video/1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.PlayURL != "https://cdn.example/play.mp4" {
		t.Fatalf("play url = %q", res.PlayURL)
	}
	if res.MusicTitle != "original sound" || res.MusicOwner != "user" {
		t.Fatalf("music info = %q / %q", res.MusicTitle, res.MusicOwner)
	}
	if res.PhotoPost {
		t.Fatal("video post flagged as photo post")
	}
}

func TestResolvePhotoPost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
            "code": 0,
            "data": {
                "music": "https://cdn.example/sound.mp3",
                "images": ["https://cdn.example/1.jpg", "https://cdn.example/2.jpg"],
                "music_info": {"title": "slideshow sound", "author": "user"}
            }
        }`))
	}))
	defer server.Close()

	client := tikwm.New(server.URL, 5)
	res, err := client.Resolve(context.Background(), "https://www.tiktok.com/@user/photo/2")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.PhotoPost {
		t.Fatal("photo post not detected")
	}
}

func TestResolveRejectedCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": -1, "msg": "url invalid"}`))
	}))
	defer server.Close()

	client := tikwm.New(server.URL, 5)
	_, err := client.Resolve(context.Background(), "https://www.tiktok.com/@user/video/3")
	if err == nil || !strings.Contains(err.Error(), "url invalid") {
		t.Fatalf("expected rejection error, got %v", err)
	}
}

func TestDownloadPrefersSoundForPhotoPosts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sound.mp3":
			w.Write([]byte("mp3-bytes"))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := tikwm.New(server.URL, 5)
	destDir := t.TempDir()
	res := tikwm.Resolution{
		PlayURL:   server.URL + "/play.mp4",
		MusicURL:  server.URL + "/sound.mp3",
		PhotoPost: true,
	}

	path, err := client.Download(context.Background(), res, destDir)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if filepath.Base(path) != "reference.mp3" {
		t.Fatalf("output file = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "mp3-bytes" {
		t.Fatalf("output contents = %q", data)
	}
}

func TestDownloadFallsBackToSoundWithoutPlayURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sound.mp3" {
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	client := tikwm.New(server.URL, 5)
	res := tikwm.Resolution{
		MusicURL:  server.URL + "/sound.mp3",
		PhotoPost: false,
	}

	path, err := client.Download(context.Background(), res, t.TempDir())
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if filepath.Base(path) != "reference.mp3" {
		t.Fatalf("output file = %q", path)
	}
}

func TestDownloadWithoutMediaURL(t *testing.T) {
	client := tikwm.New("", 5)
	if _, err := client.Download(context.Background(), tikwm.Resolution{}, t.TempDir()); err == nil {
		t.Fatal("expected error for empty resolution")
	}
}
