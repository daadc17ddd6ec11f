// Package pix monta o payload "copia e cola" de PIX estático (BR Code / EMV-MPM).
package pix

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	gui           = "br.gov.bcb.pix"
	maxNameLen    = 25
	maxCityLen    = 15
	maxTxIDLen    = 25
	maxKeyLen     = 77
	currencyBRL   = "986"
	countryBR     = "BR"
	categoryCode  = "0000"
	formatVersion = "01"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateStaticPix devolve o BR Code com valor fixo e o CRC16 no final.
func (Generator) GenerateStaticPix(key, payeeName, city string, amount decimal.Decimal, txID string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("chave PIX é obrigatória")
	}
	if len(key) > maxKeyLen {
		return "", fmt.Errorf("chave PIX maior que %d caracteres", maxKeyLen)
	}
	if !amount.IsPositive() {
		return "", fmt.Errorf("valor do PIX deve ser positivo")
	}

	name := sanitize(payeeName, maxNameLen)
	if name == "" {
		return "", fmt.Errorf("nome do recebedor é obrigatório")
	}
	place := sanitize(city, maxCityLen)
	if place == "" {
		return "", fmt.Errorf("cidade do recebedor é obrigatória")
	}

	txID = txIDOrDefault(txID)

	var b strings.Builder
	b.WriteString(field("00", formatVersion))
	b.WriteString(field("26", field("00", gui)+field("01", key)))
	b.WriteString(field("52", categoryCode))
	b.WriteString(field("53", currencyBRL))
	b.WriteString(field("54", amount.StringFixed(2)))
	b.WriteString(field("58", countryBR))
	b.WriteString(field("59", name))
	b.WriteString(field("60", place))
	b.WriteString(field("62", field("05", txID)))
	b.WriteString("6304")

	payload := b.String()
	return payload + fmt.Sprintf("%04X", crc16(payload)), nil
}

// field codifica ID + tamanho com dois dígitos + valor.
func field(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// sanitize tira acentos e caracteres fora do ASCII imprimível e corta no limite.
func sanitize(s string, max int) string {
	out, _, err := transform.String(stripMarks, strings.TrimSpace(s))
	if err != nil {
		out = s
	}
	var b strings.Builder
	for _, r := range out {
		if r >= 0x20 && r < 0x7F {
			b.WriteRune(r)
		}
	}
	clean := strings.TrimSpace(b.String())
	if len(clean) > max {
		clean = strings.TrimSpace(clean[:max])
	}
	return clean
}

func txIDOrDefault(txID string) string {
	var b strings.Builder
	for _, r := range txID {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	id := b.String()
	if id == "" {
		return "***"
	}
	if len(id) > maxTxIDLen {
		id = id[:maxTxIDLen]
	}
	return id
}

// crc16 é o CRC-16/CCITT-FALSE (polinômio 0x1021, início 0xFFFF) exigido pelo BR Code.
func crc16(payload string) uint16 {
	crc := uint16(0xFFFF)
	for i := 0; i < len(payload); i++ {
		crc ^= uint16(payload[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
