package types

type IndicatorType string

const (
	IndicatorTypeRSI IndicatorType = "rsi"
	IndicatorTypeEMA IndicatorType = "ema"
)
