package cookies

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"testing"

	"github.com/matryer/is"
)

func TestGet(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		cookie    string
		want      string
		wantFound bool
	}{
		{"simple", "session=abc123", "session", "abc123", true},
		{"second of many", "a=1; _csrf_token=tok; b=2", "_csrf_token", "tok", true},
		{"missing", "a=1; b=2", "c", "", false},
		{"empty string", "", "session", "", false},
		{"malformed segment skipped", "malformed; cookie=value; =invalid", "cookie", "value", true},
		{"malformed segment not matched", "malformed; cookie=value", "malformed", "", false},
		{"last well-formed wins", "dup=first; dup=second", "dup", "second", true},
		{"percent decoding", "token=a%2Fb%3D", "token", "a/b=", true},
		{"literal plus preserved", "token=a+b", "token", "a+b", true},
		{"encoded plus decoded", "token=a%2Bb", "token", "a+b", true},
		{"undecodable left raw", "token=%zz", "token", "%zz", true},
		{"empty value", "flag=", "flag", "", true},
		{"value containing equals", "token=a=b", "token", "a=b", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			got, found := Get(tt.raw, tt.cookie)
			is.Equal(found, tt.wantFound)
			is.Equal(got, tt.want)
		})
	}
}

func TestJarStore(t *testing.T) {
	is := is.New(t)

	jar, err := cookiejar.New(nil)
	is.NoErr(err)
	u, err := url.Parse("http://example.test")
	is.NoErr(err)
	jar.SetCookies(u, []*http.Cookie{
		{Name: "_csrf_token", Value: "tok"},
		{Name: "session", Value: "abc"},
	})

	store := JarStore{Jar: jar, URL: u}

	v, ok := store.Get("_csrf_token")
	is.True(ok)
	is.Equal(v, "tok")

	_, ok = store.Get("missing")
	is.True(!ok)
}

func TestJarStoreNil(t *testing.T) {
	is := is.New(t)
	_, ok := JarStore{}.Get("anything")
	is.True(!ok)
}
