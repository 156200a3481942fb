package marketdata

import "github.com/aristath/folio/internal/domain"

func equity(symbol, name, sector string) domain.Instrument {
	return domain.Instrument{
		Symbol: symbol, Name: name, AssetClass: "Equity", Sector: sector,
		Country: "US", Currency: domain.CurrencyUSD,
	}
}

func fund(symbol, name, sector, assetClass string) domain.Instrument {
	return domain.Instrument{
		Symbol: symbol, Name: name, AssetClass: assetClass, Sector: sector,
		Country: "US", Currency: domain.CurrencyUSD,
	}
}

// knownInstruments is read-only after init.
var knownInstruments = map[string]domain.Instrument{
	"AAPL":  equity("AAPL", "Apple Inc.", "Technology"),
	"MSFT":  equity("MSFT", "Microsoft Corp.", "Technology"),
	"GOOGL": equity("GOOGL", "Alphabet Inc.", "Technology"),
	"GOOG":  equity("GOOG", "Alphabet Inc.", "Technology"),
	"AMZN":  equity("AMZN", "Amazon.com Inc.", "Consumer Discretionary"),
	"NVDA":  equity("NVDA", "NVIDIA Corp.", "Technology"),
	"META":  equity("META", "Meta Platforms Inc.", "Technology"),
	"TSLA":  equity("TSLA", "Tesla Inc.", "Consumer Discretionary"),
	"BRK-B": equity("BRK-B", "Berkshire Hathaway B", "Financials"),
	"JPM":   equity("JPM", "JPMorgan Chase", "Financials"),
	"V":     equity("V", "Visa Inc.", "Financials"),
	"JNJ":   equity("JNJ", "Johnson & Johnson", "Healthcare"),
	"UNH":   equity("UNH", "UnitedHealth Group", "Healthcare"),
	"WMT":   equity("WMT", "Walmart Inc.", "Consumer Staples"),
	"PG":    equity("PG", "Procter & Gamble", "Consumer Staples"),
	"XOM":   equity("XOM", "Exxon Mobil Corp.", "Energy"),
	"MA":    equity("MA", "Mastercard Inc.", "Financials"),
	"HD":    equity("HD", "Home Depot Inc.", "Consumer Discretionary"),
	"DIS":   equity("DIS", "Walt Disney Co.", "Communication Services"),
	"NFLX":  equity("NFLX", "Netflix Inc.", "Communication Services"),
	"ADBE":  equity("ADBE", "Adobe Inc.", "Technology"),
	"CRM":   equity("CRM", "Salesforce Inc.", "Technology"),
	"AMD":   equity("AMD", "Advanced Micro Devices", "Technology"),
	"INTC":  equity("INTC", "Intel Corp.", "Technology"),
	"CSCO":  equity("CSCO", "Cisco Systems", "Technology"),
	"BA":    equity("BA", "Boeing Co.", "Industrials"),
	"GS":    equity("GS", "Goldman Sachs", "Financials"),
	"KO":    equity("KO", "Coca-Cola Co.", "Consumer Staples"),
	"PEP":   equity("PEP", "PepsiCo Inc.", "Consumer Staples"),
	"COST":  equity("COST", "Costco Wholesale", "Consumer Staples"),
	"T":     equity("T", "AT&T Inc.", "Communication Services"),
	"VZ":    equity("VZ", "Verizon Communications", "Communication Services"),
	"SPY":   fund("SPY", "SPDR S&P 500 ETF", "Index Fund", "ETF"),
	"QQQ":   fund("QQQ", "Invesco QQQ Trust", "Index Fund", "ETF"),
	"IWM":   fund("IWM", "iShares Russell 2000", "Index Fund", "ETF"),
	"GLD":   fund("GLD", "SPDR Gold Shares", "Commodities", "Commodity ETF"),
	"TLT":   fund("TLT", "iShares 20+ Year Treasury", "Fixed Income", "Bond ETF"),
	"BND":   fund("BND", "Vanguard Total Bond Market", "Fixed Income", "Bond ETF"),
	"VTI":   fund("VTI", "Vanguard Total Stock Market", "Index Fund", "ETF"),
	"VOO":   fund("VOO", "Vanguard S&P 500 ETF", "Index Fund", "ETF"),
	"ARKK":  fund("ARKK", "ARK Innovation ETF", "Technology", "ETF"),
	"^GSPC": fund("^GSPC", "S&P 500 Index", "Index", "Index"),
	"^DJI":  fund("^DJI", "Dow Jones Industrial", "Index", "Index"),
	"^IXIC": fund("^IXIC", "NASDAQ Composite", "Index", "Index"),
}

// KnownInstrument looks symbol up in the built-in metadata table.
func KnownInstrument(symbol string) (domain.Instrument, bool) {
	inst, ok := knownInstruments[symbol]
	return inst, ok
}
