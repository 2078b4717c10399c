package fiscalid

import (
	"fmt"
	"unicode"
)

// pesos módulo 11 para los dígitos verificadores del CNPJ (Receita Federal).
var (
	cnpjWeights1 = [12]int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = [13]int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// ValidateCNPJ valida los dos dígitos verificadores de un CNPJ (con o sin puntos/barra/guion).
// taxID puede ser "11.222.333/0001-81" o "11222333000181".
func ValidateCNPJ(taxID string) error {
	digits := Digits(taxID)
	if len(digits) != 14 {
		return fmt.Errorf("fiscalid: CNPJ debe tener 14 dígitos, se encontraron %d", len(digits))
	}
	if allSame(digits) {
		return fmt.Errorf("fiscalid: CNPJ con dígitos repetidos")
	}
	d1 := checkDigit(digits[:12], cnpjWeights1[:])
	d2 := checkDigit(append(append([]byte{}, digits[:12]...), d1), cnpjWeights2[:])
	if digits[12] != d1 || digits[13] != d2 {
		return fmt.Errorf("fiscalid: dígitos verificadores del CNPJ inválidos: esperado %c%c, recibido %c%c", d1, d2, digits[12], digits[13])
	}
	return nil
}

// ValidateCPF valida los dos dígitos verificadores de un CPF.
func ValidateCPF(taxID string) error {
	digits := Digits(taxID)
	if len(digits) != 11 {
		return fmt.Errorf("fiscalid: CPF debe tener 11 dígitos, se encontraron %d", len(digits))
	}
	if allSame(digits) {
		return fmt.Errorf("fiscalid: CPF con dígitos repetidos")
	}
	w1 := []int{10, 9, 8, 7, 6, 5, 4, 3, 2}
	w2 := []int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2}
	d1 := checkDigit(digits[:9], w1)
	d2 := checkDigit(append(append([]byte{}, digits[:9]...), d1), w2)
	if digits[9] != d1 || digits[10] != d2 {
		return fmt.Errorf("fiscalid: dígitos verificadores del CPF inválidos")
	}
	return nil
}

// checkDigit módulo 11: resto < 2 -> '0', si no 11 - resto.
func checkDigit(digits []byte, weights []int) byte {
	var sum int
	for i, d := range digits {
		sum += int(d-'0') * weights[i]
	}
	remainder := sum % 11
	if remainder < 2 {
		return '0'
	}
	return byte('0' + (11 - remainder))
}

// Digits extrae solo los dígitos.
func Digits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}

func allSame(digits []byte) bool {
	for _, d := range digits[1:] {
		if d != digits[0] {
			return false
		}
	}
	return true
}
