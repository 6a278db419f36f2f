package refdata

import (
	"strings"

	rd "github.com/Pallinder/go-randomdata"
	"github.com/brianvoe/gofakeit"
	"github.com/jaswdr/faker/v2"
)

// Synthesize returns a copy of base topped up with n extra draws per
// table from the fake-data libraries. Language codes, relief codes and
// accreditations are domain vocabularies and are never synthesized.
// The extra rows are not reproducible from the generator seed.
func Synthesize(base *Tables, n int) *Tables {
	out := base.clone()
	if n <= 0 {
		return out
	}

	fake := faker.New()

	out.FirstNames = merge(out.FirstNames, n, func(i int) string {
		if i%2 == 0 {
			return rd.FirstName(rd.RandomGender)
		}
		return fake.Person().FirstName()
	})
	out.LastNames = merge(out.LastNames, n, func(i int) string {
		if i%2 == 0 {
			return rd.LastName()
		}
		return fake.Person().LastName()
	})
	out.Cities = merge(out.Cities, n, func(int) string { return rd.City() })
	out.States = merge(out.States, n, func(int) string { return rd.State(rd.Small) })
	out.Countries = merge(out.Countries, n, func(int) string { return rd.Country(rd.FullCountry) })
	out.Gibberish = merge(out.Gibberish, n, func(i int) string {
		if i%2 == 0 {
			return strings.ToLower(fake.Lorem().Word())
		}
		return strings.ToLower(rd.Noun())
	})
	out.Guilds = merge(out.Guilds, n, func(int) string {
		return domainLabel(gofakeit.DomainName())
	})

	return out
}

// merge appends up to n new distinct, non-empty values produced by next.
func merge(existing []string, n int, next func(i int) string) []string {
	seen := make(map[string]struct{}, len(existing)+n)
	for _, v := range existing {
		seen[v] = struct{}{}
	}

	added := 0
	for i := 0; i < n*3 && added < n; i++ {
		v := strings.TrimSpace(next(i))
		if v == "" || strings.Contains(v, "@") {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		existing = append(existing, v)
		added++
	}
	return existing
}

// domainLabel keeps the registrable label of a host name: "acme.com" -> "acme".
func domainLabel(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if i := strings.Index(host, "."); i > 0 {
		host = host[:i]
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, host)
}
