package config

import "testing"

func TestLoggingValidate(t *testing.T) {
	if err := DefaultLogging().Validate(); err != nil {
		t.Errorf("error validating default logging config: %s", err)
	}
	bad := &Logging{Level: "verbose"}
	if err := bad.Validate(); err == nil {
		t.Error("expected an error for an unrecognised log level")
	}
}

func TestLoggingCopy(t *testing.T) {
	a := DefaultLogging()
	b := a.Copy()
	a.Level = "debug"
	if a.Level == b.Level {
		t.Errorf("expected copy to be independent of the original")
	}
}
