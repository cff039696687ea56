package app

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func toastTestModel(t *testing.T) *Model {
	t.Helper()
	fake := &fakeChat{}
	fake.setSnapshot(authenticatedSnapshot())
	return newTestModel(t, fake)
}

func TestToastExpires(t *testing.T) {
	m := toastTestModel(t)
	m.showInfoToast("chat renamed")

	if !m.toastActive(testNow) {
		t.Fatal("toast should be active immediately")
	}
	if !m.toastActive(testNow.Add(toastDuration - time.Second)) {
		t.Fatal("toast should live for its full duration")
	}
	if m.toastActive(testNow.Add(toastDuration + time.Second)) {
		t.Fatal("toast should expire")
	}
}

func TestToastIgnoresBlankMessages(t *testing.T) {
	m := toastTestModel(t)
	m.showWarningToast("   ")
	if m.toastText != "" {
		t.Fatalf("toast = %q, want empty", m.toastText)
	}
}

func TestToastLevels(t *testing.T) {
	m := toastTestModel(t)

	m.showInfoToast("a")
	if m.toastLevel != toastLevelInfo {
		t.Fatal("info level lost")
	}
	m.showWarningToast("b")
	if m.toastLevel != toastLevelWarning {
		t.Fatal("warning level lost")
	}
	m.showErrorToast("c")
	if m.toastLevel != toastLevelError {
		t.Fatal("error level lost")
	}
}

func TestToastLineRightAligned(t *testing.T) {
	m := toastTestModel(t)
	m.showInfoToast("copied reply")

	line := m.toastLine(80)
	if lipgloss.Width(line) != 80 {
		t.Fatalf("toast line width = %d, want 80", lipgloss.Width(line))
	}
	if !strings.Contains(line, "copied reply") {
		t.Fatalf("toast text missing: %q", line)
	}
	if !strings.HasPrefix(line, " ") {
		t.Fatalf("toast pill should sit on the right: %q", line)
	}
}

func TestToastLineTruncates(t *testing.T) {
	m := toastTestModel(t)
	m.showErrorToast(strings.Repeat("failure ", 20))

	line := m.toastLine(40)
	if lipgloss.Width(line) > 40 {
		t.Fatalf("toast line width = %d, want at most 40", lipgloss.Width(line))
	}
}

func TestClearToast(t *testing.T) {
	m := toastTestModel(t)
	m.showInfoToast("copied reply")
	m.clearToast()

	if m.toastActive(testNow) {
		t.Fatal("cleared toast should be inactive")
	}
	if m.toastLine(80) != "" {
		t.Fatal("cleared toast should render nothing")
	}
}
