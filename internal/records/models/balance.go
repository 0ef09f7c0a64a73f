package models

// OwnedDomain is one entry of an ANS holder's domain list. Only Domain is
// consulted; the registry returns more fields than are modelled here.
type OwnedDomain struct {
	Domain string `json:"domain"`
}

// Balance is one holder entry of the ANS registry snapshot.
type Balance struct {
	Address      string        `json:"address"`
	OwnedDomains []OwnedDomain `json:"ownedDomains"`
}

// Owns reports whether the holder owns the normalized domain.
func (b Balance) Owns(domain string) bool {
	for _, d := range b.OwnedDomains {
		if d.Domain == domain {
			return true
		}
	}
	return false
}
