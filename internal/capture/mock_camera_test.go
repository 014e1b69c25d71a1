package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func TestMockCamera_OpenClose(t *testing.T) {
	cam := NewMockCamera(nil, false)

	if cam.IsOpen() {
		t.Error("mock camera should start closed")
	}

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !cam.IsOpen() {
		t.Error("mock camera should be open after Open()")
	}

	if err := cam.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if cam.IsOpen() {
		t.Error("mock camera should be closed after Close()")
	}
}

func TestMockCamera_ReadRequiresOpen(t *testing.T) {
	cam := NewMockCamera(nil, false)

	if _, err := cam.ReadFrame(); err != ErrCameraNotOpen {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
}

func TestMockCamera_PlaybackAndLoop(t *testing.T) {
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame}, true)
	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	for i := 0; i < 3; i++ {
		got, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() %d error = %v", i, err)
		}
		got.Close()
	}
}

func TestMockCamera_ExhaustsWithoutLoop(t *testing.T) {
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame}, false)
	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	got, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("first ReadFrame() error = %v", err)
	}
	got.Close()

	if _, err := cam.ReadFrame(); err == nil {
		t.Error("second ReadFrame() should fail once frames are exhausted")
	}
}
