package browser

import (
	"errors"
	"testing"
)

func TestSnapshotFrameDocument(t *testing.T) {
	frame := &snapshotFrame{
		url:  "https://legacy.example/gallery-frame",
		html: `<html><body><div class="cycle-carousel-wrap"></div></body></html>`,
	}
	doc, err := frame.Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if doc.Find(".cycle-carousel-wrap").Length() != 1 {
		t.Error("parsed document lost the carousel wrapper")
	}
	if frame.URL() != "https://legacy.example/gallery-frame" {
		t.Errorf("URL = %q", frame.URL())
	}
}

func TestSnapshotFrameInaccessible(t *testing.T) {
	frame := &snapshotFrame{err: errors.New("frame detached")}
	if _, err := frame.Document(); err == nil {
		t.Error("expected the capture error to surface")
	}

	empty := &snapshotFrame{url: "https://other-origin.example/embed"}
	if _, err := empty.Document(); err == nil {
		t.Error("expected an error for a frame with no content")
	}
}
