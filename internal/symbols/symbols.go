/*
Package symbols recognises Vietnamese ticker symbols in free text.

Known tickers are accepted outright. Other well-formed tokens are checked against a list of
common acronyms, then a shared cache, then an optional validator before being accepted with
low confidence.
*/
package symbols

import (
	"regexp"
	"sort"
)

var symbolShape = regexp.MustCompile(`^[A-Z]{3,4}$`)

// commonSymbols are the listed tickers users ask about most.
var commonSymbols = []string{
	"VCB", "TCB", "MBB", "ACB", "BID", "CTG", "VPB", "STB", "TPB", "HDB",
	"VIC", "VHM", "VRE", "NVL", "PDR", "DXG", "KDH", "BCM", "HDG", "NLG",
	"SSI", "VND", "HCM", "VCI", "MBS", "FTS", "VIX", "AGR", "BSI", "SHS",
	"HPG", "HSG", "NKG", "TLG", "DTL", "POM", "DGC", "VCS", "TNG",
	"FPT", "CMG", "VGI", "SAM", "ELC", "ITD",
	"MWG", "PNJ", "FRT", "DGW",
	"GAS", "PVD", "PVS", "PVT", "PVC", "NT2", "POW",
	"VNM", "MSN", "SAB", "VHC", "KDC", "ANV", "MCH", "SBT",
	"GMD", "VJC", "HVN", "ACV", "VOS", "VSC",
	"DHG", "IMP", "DMC", "TRA", "DBD",
	"PLX", "GEX", "HAG", "REE", "PC1", "BWE", "ASM", "VPI",
}

// extraSymbols widen the vocabulary with mid caps seen in user questions.
var extraSymbols = []string{
	"VIB", "SHB", "DPM", "CMT", "PPC", "DRC", "CII", "HBC", "IJC", "SCR",
	"VGC", "BVH", "ORS", "VIG",
}

// excluded are acronyms that look like tickers but never are.
var excluded = toSet([]string{
	"CEO", "CFO", "CTO", "USA", "API", "SQL", "XML", "HTML", "CSS", "PHP",
	"NET", "COM", "ORG", "GOV", "EDU", "INFO", "JOBS", "NEWS", "HELP",
	"TIPS", "CHAT", "CODE", "DATA", "FILE", "TEXT", "JSON", "HTTP", "HTTPS",
	"AJAX", "REST", "SOAP", "CRUD", "AUTH", "BLOG", "DOCS", "DEMO", "TEST",
	"PROD", "LIVE", "BETA", "WIKI", "MAIL", "SMTP", "HOST", "PORT", "PATH",
	"USER", "PASS", "HASH", "SALT", "UUID", "GUID", "TEMP", "LOGS", "DIST",
	"NAY", "XXX",
	"BCTC", "ROE", "ROA", "EPS", "GDP", "CPI", "USD", "ETF", "IPO", "HOSE", "HNX", "TTCK",
})

var known, knownSorted = func() (map[string]struct{}, []string) {
	set := make(map[string]struct{})
	for _, list := range [][]string{commonSymbols, extraSymbols} {
		for _, s := range list {
			if _, bad := excluded[s]; bad {
				continue
			}
			set[s] = struct{}{}
		}
	}
	sorted := make([]string, 0, len(set))
	for s := range set {
		sorted = append(sorted, s)
	}
	sort.Strings(sorted)
	return set, sorted
}()

func toSet(list []string) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, s := range list {
		set[s] = struct{}{}
	}
	return set
}

// IsKnown reports whether s is in the built-in vocabulary.
func IsKnown(s string) bool {
	_, ok := known[s]
	return ok
}

// IsExcluded reports whether s is a common acronym that is never a ticker.
func IsExcluded(s string) bool {
	_, ok := excluded[s]
	return ok
}

// Known returns the vocabulary in sorted order.
func Known() []string {
	out := make([]string, len(knownSorted))
	copy(out, knownSorted)
	return out
}

// ValidFormat reports whether s has the shape of a ticker and is not an excluded acronym.
func ValidFormat(s string) bool {
	return symbolShape.MatchString(s) && !IsExcluded(s)
}
