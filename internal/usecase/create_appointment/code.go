package create_appointment

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// Формат confirmation code: "ABCD-1234"
// Буквы без I и O - их путают с цифрами при диктовке по телефону
const (
	codeLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	codeDigits  = "0123456789"
)

// RandomCodeGenerator генератор confirmation code на crypto/rand
type RandomCodeGenerator struct{}

// Generate возвращает новый код формата "ABCD-1234"
func (g *RandomCodeGenerator) Generate() string {
	var b strings.Builder
	b.Grow(9)

	for i := 0; i < 4; i++ {
		b.WriteByte(codeLetters[randIndex(len(codeLetters))])
	}
	b.WriteByte('-')
	for i := 0; i < 4; i++ {
		b.WriteByte(codeDigits[randIndex(len(codeDigits))])
	}

	return b.String()
}

func randIndex(n int) int {
	idx, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand без энтропии - фатальное состояние системы
		panic(err)
	}
	return int(idx.Int64())
}
