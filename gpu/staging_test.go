package gpu

import "testing"

func TestStagingBeltFinishTwiceInOneFramePanics(t *testing.T) {
	belt := NewStagingBelt(nil)
	belt.frameOpen = true
	belt.Finish()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic calling Finish twice without an intervening Write")
		}
	}()
	belt.Finish()
}

func TestStagingBeltRecallWithoutFinishErrors(t *testing.T) {
	belt := NewStagingBelt(nil)
	belt.frameOpen = true

	if err := belt.Recall(); err == nil {
		t.Fatal("expected error recalling before Finish")
	}
}

func TestStagingBeltRecallAfterFinishSucceeds(t *testing.T) {
	belt := NewStagingBelt(nil)
	belt.frameOpen = true
	belt.Finish()

	if err := belt.Recall(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !belt.recalled {
		t.Fatal("expected belt to be marked recalled")
	}
}

func TestStagingBeltWriteBeforeRecallPanics(t *testing.T) {
	belt := NewStagingBelt(nil)
	belt.frameOpen = true
	belt.Finish()
	belt.recalled = false

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic writing before Recall")
		}
	}()
	belt.Write(&Buffer{}, 0, []byte{1})
}
