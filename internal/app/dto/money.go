package dto

import "homestay/internal/domain/shared/money"

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{
		Amount:   value.Amount,
		Currency: value.Currency,
	}
}

func (m MoneyDTO) Domain() (money.Money, error) {
	return money.New(m.Amount, m.Currency)
}
