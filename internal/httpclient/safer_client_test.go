package httpclient

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewSaferClient(t *testing.T) {
	client := NewSaferClient(10 * time.Second)

	if client == nil {
		t.Fatal("NewSaferClient returned nil")
	}

	if client.Timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", client.Timeout)
	}

	if !client.blockPrivateIP {
		t.Error("expected blockPrivateIP to be true by default")
	}

	if client.maxRedirects != 10 {
		t.Errorf("expected maxRedirects 10, got %d", client.maxRedirects)
	}

	if len(client.allowedSchemes) != 2 {
		t.Errorf("expected 2 allowed schemes, got %d", len(client.allowedSchemes))
	}
}

func TestValidateURL(t *testing.T) {
	client := NewSaferClient(10 * time.Second)

	tests := []struct {
		name    string
		url     string
		wantErr bool
		errMsg  string
	}{
		// Valid URLs
		{"valid http", "http://example.com", false, ""},
		{"valid https", "https://example.com/path", false, ""},
		{"valid with port", "https://example.com:8443/api", false, ""},

		// Invalid schemes
		{"ftp scheme", "ftp://example.com", true, "scheme"},
		{"file scheme", "file:///etc/passwd", true, "scheme"},
		{"gopher scheme", "gopher://example.com", true, "scheme"},

		// SSRF attempts
		{"localhost", "http://localhost/admin", true, "localhost"},
		{"localhost with port", "http://localhost:8080", true, "localhost"},
		{"localhost subdomain", "http://foo.localhost", true, "localhost"},
		{"credential injection", "http://evil.com@localhost/", true, "@"},
		{"loopback IP", "http://127.0.0.1/", true, "private IP"},
		{"private 10.x", "http://10.0.0.1/", true, "private IP"},
		{"private 172.16.x", "http://172.16.0.1/", true, "private IP"},
		{"private 192.168.x", "http://192.168.1.1/", true, "private IP"},
		{"link-local", "http://169.254.169.254/metadata", true, "private IP"},
		{"missing hostname", "http:///path", true, "hostname"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.ValidateURL(tt.url)

			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %s, got nil", tt.url)
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error for %s: %v", tt.url, err)
				}
			}
		})
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip       string
		expected bool
		desc     string
	}{
		// IPv4 private ranges
		{"10.0.0.1", true, "RFC 1918 10.x"},
		{"10.255.255.255", true, "RFC 1918 10.x upper bound"},
		{"172.16.0.1", true, "RFC 1918 172.16.x"},
		{"172.31.255.255", true, "RFC 1918 172.x upper bound"},
		{"192.168.0.1", true, "RFC 1918 192.168.x"},
		{"127.0.0.1", true, "Loopback"},
		{"127.255.255.255", true, "Loopback upper bound"},
		{"169.254.1.1", true, "Link-local"},
		{"0.0.0.0", true, "Unspecified"},
		{"224.0.0.1", true, "Multicast"},
		{"240.0.0.1", true, "Reserved"},

		// IPv4 public
		{"8.8.8.8", false, "Public IPv4 (Google DNS)"},
		{"1.1.1.1", false, "Public IPv4 (Cloudflare DNS)"},
		{"93.184.216.34", false, "Public IPv4 (example.com)"},
		{"172.15.255.255", false, "Just below 172.16.0.0/12"},
		{"172.32.0.0", false, "Just above 172.16.0.0/12"},

		// IPv6 private/special
		{"::1", true, "IPv6 loopback"},
		{"fe80::1", true, "IPv6 link-local"},
		{"fc00::1", true, "IPv6 unique local"},
		{"fd12:3456:789a::1", true, "IPv6 unique local (fd)"},
		{"fec0::1", true, "IPv6 site-local (deprecated)"},
		{"ff02::1", true, "IPv6 multicast"},
		{"::", true, "IPv6 unspecified"},
		{"2001:db8::1", true, "IPv6 documentation prefix"},

		// IPv6 public
		{"2001:4860:4860::8888", false, "Public IPv6 (Google DNS)"},
		{"2606:4700:4700::1111", false, "Public IPv6 (Cloudflare DNS)"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			ip := net.ParseIP(tt.ip)
			if ip == nil {
				t.Fatalf("failed to parse IP %q", tt.ip)
			}

			got := isPrivateIP(ip)
			if got != tt.expected {
				t.Errorf("isPrivateIP(%s) = %v, want %v (%s)", tt.ip, got, tt.expected, tt.desc)
			}
		})
	}
}

func TestMaxRedirects(t *testing.T) {
	hops := 0
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hops++
		http.Redirect(w, r, server.URL, http.StatusFound)
	}))
	defer server.Close()

	client := WrapClient(server.Client())
	maxRedirects := 3
	client.maxRedirects = maxRedirects
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= client.maxRedirects {
			return http.ErrUseLastResponse
		}
		return nil
	}

	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if hops > maxRedirects+1 {
		t.Errorf("expected at most %d hops, got %d", maxRedirects+1, hops)
	}
}

func TestIsLocalhost(t *testing.T) {
	tests := []struct {
		hostname string
		expected bool
	}{
		{"localhost", true},
		{"LOCALHOST", true},
		{"localhost.localdomain", true},
		{"foo.localhost", true},
		{"sub.domain.localhost", true},
		{"example.com", false},
		{"localhost.example.com", false},
		{"notlocalhost", false},
	}

	for _, tt := range tests {
		t.Run(tt.hostname, func(t *testing.T) {
			got := isLocalhost(tt.hostname)
			if got != tt.expected {
				t.Errorf("isLocalhost(%q) = %v, want %v", tt.hostname, got, tt.expected)
			}
		})
	}
}

func TestSaferClientOptions(t *testing.T) {
	t.Run("custom schemes", func(t *testing.T) {
		client := NewSaferClientWithOptions(5*time.Second, SaferClientOptions{
			AllowedSchemes: []string{"https"},
		})

		if _, err := client.ValidateURL("http://example.com"); err == nil {
			t.Error("expected http to be rejected with https-only allowlist")
		}

		if _, err := client.ValidateURL("https://example.com"); err != nil {
			t.Errorf("unexpected error for https: %v", err)
		}
	})

	t.Run("disable private IP blocking", func(t *testing.T) {
		blockOff := false
		client := NewSaferClientWithOptions(5*time.Second, SaferClientOptions{
			BlockPrivateIP: &blockOff,
		})

		if _, err := client.ValidateURL("http://localhost:5600"); err != nil {
			t.Errorf("unexpected error with private IP blocking disabled: %v", err)
		}

		if _, err := client.ValidateURL("http://127.0.0.1:5600"); err != nil {
			t.Errorf("unexpected error for loopback with blocking disabled: %v", err)
		}
	})

	t.Run("custom max redirects", func(t *testing.T) {
		maxRedirects := 3
		client := NewSaferClientWithOptions(5*time.Second, SaferClientOptions{
			MaxRedirects: &maxRedirects,
		})

		if client.maxRedirects != 3 {
			t.Errorf("expected maxRedirects 3, got %d", client.maxRedirects)
		}
	})
}

func TestDoMethod(t *testing.T) {
	client := NewSaferClient(5 * time.Second)

	req, err := http.NewRequest(http.MethodGet, "http://127.0.0.1/admin", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	resp, err := client.Do(req)
	if resp != nil {
		resp.Body.Close()
	}

	if err == nil {
		t.Fatal("expected error for blocked request")
	}

	if !strings.Contains(err.Error(), "SSRF protection") {
		t.Errorf("expected SSRF protection error, got: %v", err)
	}
}

func TestWrapClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := WrapClient(server.Client())

	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("wrapped client should allow localhost: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
