package record

import (
	"bytes"
	"testing"
)

func sampleCapture() *Capture {
	return &Capture{
		UrlKey:      "com,example,:80:http:/",
		Timestamp:   20200101000000,
		OriginalUrl: "http://example.com/",
		Status:      200,
		MimeType:    "text/html",
		Digest:      "sha1:ABCDEF",
		RedirectUrl: "-",
		RobotFlags:  "-",
		Length:      1234,
		Offset:      5678,
		File:        "example-001.warc.gz",
	}
}

func TestCaptureValueRoundTrip(t *testing.T) {
	c := sampleCapture()
	encoded := EncodeCaptureValue(c)
	decoded, err := DecodeCaptureValue(c.UrlKey, c.Timestamp, encoded)
	if err != nil {
		t.Fatal(err)
	}
	if *decoded != *c {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", decoded, c)
	}
}

func TestCaptureValueTrailingBytesTolerated(t *testing.T) {
	c := sampleCapture()
	encoded := EncodeCaptureValue(c)
	encoded = append(encoded, 0xDE, 0xAD, 0xBE, 0xEF)
	if _, err := DecodeCaptureValue(c.UrlKey, c.Timestamp, encoded); err != nil {
		t.Errorf("expected trailing bytes to be tolerated, got %v", err)
	}
}

func TestCaptureValueCorrupt(t *testing.T) {
	if _, err := DecodeCaptureValue("x", 0, []byte{0, 0, 0, 100}); err == nil {
		t.Fatal("expected a corrupt-record error for a truncated value")
	}
}

func TestCaptureKeyOrderingByURL(t *testing.T) {
	k1 := EncodeCaptureKey("com,example,:80:http:/a", 20200101000000)
	k2 := EncodeCaptureKey("com,example,:80:http:/b", 20200101000000)
	if bytes.Compare(k1, k2) >= 0 {
		t.Errorf("expected key(a) < key(b)")
	}
}

func TestCaptureKeyOrderingByTimestamp(t *testing.T) {
	k1 := EncodeCaptureKey("com,example,:80:http:/a", 20200101000000)
	k2 := EncodeCaptureKey("com,example,:80:http:/a", 20210101000000)
	if bytes.Compare(k1, k2) >= 0 {
		t.Errorf("expected key(t1) < key(t2) for equal urlKey")
	}
}

func TestCaptureKeyRoundTrip(t *testing.T) {
	key := EncodeCaptureKey("com,example,:80:http:/a/b", 20200601000000)
	urlKey, ts, err := DecodeCaptureKey(key)
	if err != nil {
		t.Fatal(err)
	}
	if urlKey != "com,example,:80:http:/a/b" || ts != 20200601000000 {
		t.Errorf("got (%q, %d)", urlKey, ts)
	}
}

func TestAliasKeyValue(t *testing.T) {
	k := EncodeAliasKey("com,example,www,:80:http:/")
	v := EncodeAliasValue("com,example,:80:http:/")
	if string(k) != "com,example,www,:80:http:/" {
		t.Errorf("alias key should be verbatim, got %q", k)
	}
	if string(v) != "com,example,:80:http:/" {
		t.Errorf("alias value should be verbatim, got %q", v)
	}
}
