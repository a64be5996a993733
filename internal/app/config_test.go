package app

import (
	"reflect"
	"testing"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("CHATBOX_TEST_KEY", "value")
	if got := getEnv("CHATBOX_TEST_KEY", "def"); got != "value" {
		t.Errorf("getEnv() = %q, want value", got)
	}
	if got := getEnv("CHATBOX_TEST_MISSING", "def"); got != "def" {
		t.Errorf("getEnv() default = %q, want def", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("CHATBOX_TEST_INT", "25")
	if got := getEnvInt("CHATBOX_TEST_INT", 10); got != 25 {
		t.Errorf("getEnvInt() = %d, want 25", got)
	}
	t.Setenv("CHATBOX_TEST_INT", "junk")
	if got := getEnvInt("CHATBOX_TEST_INT", 10); got != 10 {
		t.Errorf("getEnvInt() fallback = %d, want 10", got)
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" http://a.example , ,http://b.example")
	want := []string{"http://a.example", "http://b.example"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitCSV() = %v, want %v", got, want)
	}
}
