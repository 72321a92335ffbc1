package natal

import (
	"fmt"

	apperrors "github.com/astracalc/agent-server/pkg/errors"
)

// signNames is the fixed ecliptic order, index-addressed 0=Koç (Aries)
// through 11=Balık (Pisces). Loaded once, immutable.
var signNames = [12]string{
	"Koç",
	"Boğa",
	"İkizler",
	"Yengeç",
	"Aslan",
	"Başak",
	"Terazi",
	"Akrep",
	"Yay",
	"Oğlak",
	"Kova",
	"Balık",
}

// SignName maps a sign index to its localized name. An out-of-range index
// is an engine contract violation, not a user input error.
func SignName(index int) (string, error) {
	if index < 0 || index >= len(signNames) {
		return "", apperrors.Wrap("engine_contract",
			"Hesaplama sonucu beklenmeyen bir biçimde geldi, lütfen daha sonra tekrar deneyin.",
			fmt.Errorf("sign index out of range: %d", index))
	}
	return signNames[index], nil
}
