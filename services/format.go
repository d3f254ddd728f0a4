package services

import (
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// frenchNumberFormat groups thousands with a space and uses a decimal comma.
const frenchNumberFormat = "# ###,##"

// FormatEUR formats an amount the French way: 1 234,56 €.
// The result always includes exactly 2 decimal places.
func FormatEUR(amount float64) string {
	if !isFinite(amount) {
		amount = 0
	}
	// Avoid "-0,00 €" for tiny negative rounding residue.
	if math.Abs(amount) < 0.005 {
		amount = 0
	}
	return humanize.FormatFloat(frenchNumberFormat, amount) + " €"
}

// FormatQuantity formats a quantity with French separators and without
// trailing zero decimals: 12 → "12", 1250.5 → "1 250,5".
func FormatQuantity(q float64) string {
	if !isFinite(q) {
		q = 0
	}
	s := humanize.FormatFloat(frenchNumberFormat, q)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ",")
}

// FormatPercent formats a fraction as a French percentage: 0.08 → "8 %".
func FormatPercent(fraction float64) string {
	return FormatQuantity(fraction*100) + " %"
}

// TitleCase turns a rate key such as "pompe-a-chaleur" into a display label
// ("Pompe A Chaleur").
func TitleCase(key string) string {
	words := strings.Fields(strings.NewReplacer("-", " ", "_", " ").Replace(key))
	return cases.Title(language.French).String(strings.Join(words, " "))
}

// AmountToWords spells an amount in French, as printed on quotes.
// Example: 1234.56 → "mille deux cent trente-quatre euros et cinquante-six centimes"
func AmountToWords(amount float64) string {
	if !isFinite(amount) {
		amount = 0
	}
	if amount < 0 {
		return "moins " + AmountToWords(-amount)
	}

	total := int64(math.Round(amount * 100))
	euros, cents := total/100, total%100

	words := frenchNumber(euros)
	switch {
	case euros >= 1_000_000 && euros%1_000_000 == 0:
		words += " d'euros"
	case euros > 1:
		words += " euros"
	default:
		words += " euro"
	}

	if cents > 0 {
		words += " et " + frenchNumber(cents)
		if cents > 1 {
			words += " centimes"
		} else {
			words += " centime"
		}
	}
	return words
}

var frenchOnes = []string{
	"", "un", "deux", "trois", "quatre", "cinq", "six", "sept", "huit", "neuf",
	"dix", "onze", "douze", "treize", "quatorze", "quinze", "seize",
	"dix-sept", "dix-huit", "dix-neuf",
}

var frenchTens = []string{
	"", "dix", "vingt", "trente", "quarante", "cinquante", "soixante",
}

func frenchNumber(n int64) string {
	if n == 0 {
		return "zéro"
	}

	var parts []string
	for _, sc := range []struct {
		value int64
		name  string
	}{
		{1_000_000_000, "milliard"},
		{1_000_000, "million"},
	} {
		if n >= sc.value {
			q := n / sc.value
			name := sc.name
			if q > 1 {
				name += "s"
			}
			// Millions and milliards are nouns: cents and vingts keep their s.
			parts = append(parts, frenchGroup(q, true)+" "+name)
			n %= sc.value
		}
	}

	if n >= 1000 {
		q := n / 1000
		if q == 1 {
			parts = append(parts, "mille")
		} else {
			// Mille is invariable and blocks the plural of cent and vingt.
			parts = append(parts, frenchUnder1000(q, false)+" mille")
		}
		n %= 1000
	}

	if n > 0 {
		parts = append(parts, frenchUnder1000(n, true))
	}
	return strings.Join(parts, " ")
}

func frenchGroup(n int64, final bool) string {
	if n >= 1000 {
		return frenchNumber(n)
	}
	return frenchUnder1000(n, final)
}

// frenchUnder1000 spells 1..999. final is false when the group is followed
// by "mille", which suppresses the plural s of cents and quatre-vingts.
func frenchUnder1000(n int64, final bool) string {
	h, r := n/100, n%100

	var parts []string
	if h > 0 {
		w := "cent"
		if h > 1 {
			w = frenchOnes[h] + " cent"
			if r == 0 && final {
				w += "s"
			}
		}
		parts = append(parts, w)
	}
	if r > 0 {
		parts = append(parts, frenchUnder100(r, final))
	}
	return strings.Join(parts, " ")
}

func frenchUnder100(n int64, final bool) string {
	switch {
	case n < 20:
		return frenchOnes[n]
	case n < 70:
		t, u := n/10, n%10
		switch u {
		case 0:
			return frenchTens[t]
		case 1:
			return frenchTens[t] + " et un"
		}
		return frenchTens[t] + "-" + frenchOnes[u]
	case n < 80:
		if n == 71 {
			return "soixante et onze"
		}
		return "soixante-" + frenchOnes[n-60]
	case n == 80:
		if final {
			return "quatre-vingts"
		}
		return "quatre-vingt"
	}
	return "quatre-vingt-" + frenchOnes[n-80]
}
