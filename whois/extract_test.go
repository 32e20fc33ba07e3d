package whois

import "testing"

const sampleRaw = `Domain Name: EXAMPLE.COM
Registry Domain ID: 2336799_DOMAIN_COM-VRSN
Registrar WHOIS Server: whois.iana.org
Registrar URL: http://res-dom.iana.org
Updated Date: 2024-08-14T07:01:34Z
Creation Date: 1995-08-14T04:00:00Z
Registry Expiry Date: 2025-08-13T04:00:00Z
Registrar: RESERVED-Internet Assigned Numbers Authority
Name Server: A.IANA-SERVERS.NET
Name Server: B.IANA-SERVERS.NET
Name Server: a.iana-servers.net
DNSSEC: signedDelegation
`

func TestExtractFields(t *testing.T) {
	r := Extract(sampleRaw)

	if r.Domain != "example.com" {
		t.Errorf("domain = %q, want example.com", r.Domain)
	}
	if r.CreationDate != "1995-08-14T04:00:00Z" {
		t.Errorf("creation date = %q", r.CreationDate)
	}
	if r.UpdatedDate != "2024-08-14T07:01:34Z" {
		t.Errorf("updated date = %q", r.UpdatedDate)
	}
	if r.ExpiryDate != "2025-08-13T04:00:00Z" {
		t.Errorf("expiry date = %q", r.ExpiryDate)
	}
	// 注册商只取第一个词
	if r.Registrar != "RESERVED-Internet" {
		t.Errorf("registrar = %q", r.Registrar)
	}
	if r.RegistrarURL != "http://res-dom.iana.org" {
		t.Errorf("registrar url = %q", r.RegistrarURL)
	}
	if !r.Complete() {
		t.Fatalf("expected complete result")
	}
}

func TestExtractDedupesNameServers(t *testing.T) {
	r := Extract(sampleRaw)
	want := []string{"a.iana-servers.net", "b.iana-servers.net"}
	if len(r.NameServers) != len(want) {
		t.Fatalf("name servers = %v, want %v", r.NameServers, want)
	}
	for i := range want {
		if r.NameServers[i] != want[i] {
			t.Errorf("name server[%d] = %q, want %q", i, r.NameServers[i], want[i])
		}
	}
}

func TestExtractMissingFields(t *testing.T) {
	r := Extract("No match for domain \"NOPE.EXAMPLE\".\n")
	if r == nil {
		t.Fatal("expected non-nil result")
	}
	if r.Complete() {
		t.Fatal("expected incomplete result")
	}
	if r.Domain != "" || r.ExpiryDate != "" || len(r.NameServers) != 0 {
		t.Fatalf("expected empty fields, got %+v", r)
	}
}

func TestCompleteNeedsBothDates(t *testing.T) {
	var nilResult *Result
	if nilResult.Complete() {
		t.Fatal("nil result must not be complete")
	}
	if (&Result{CreationDate: "2020-01-01"}).Complete() {
		t.Fatal("missing expiry must not be complete")
	}
	if (&Result{ExpiryDate: "2030-01-01"}).Complete() {
		t.Fatal("missing creation must not be complete")
	}
	if !(&Result{CreationDate: "2020-01-01", ExpiryDate: "2030-01-01"}).Complete() {
		t.Fatal("both dates present must be complete")
	}
}
