package event

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	ui "github.com/holiman/uint256"
)

// liquidityEventInput is the wire shape of a LiquidityEvent: every big
// integer travels as a decimal string, mirroring the reference repo's
// TransactionInput convention, so values larger than a machine word never
// round-trip through float64 or int64.
type liquidityEventInput struct {
	ID          string `json:"id"`
	BlockNumber uint64 `json:"blockNumber"`
	LogIndex    uint64 `json:"logIndex"`
	Type        string `json:"type"`
	TickLower   int    `json:"tickLower"`
	TickUpper   int    `json:"tickUpper"`
	Liquidity   string `json:"liquidity"`
	Amount0     string `json:"amount0"`
	Amount1     string `json:"amount1"`
	Date        string `json:"date"`
}

type swapEventInput struct {
	ID           string `json:"id"`
	BlockNumber  uint64 `json:"blockNumber"`
	LogIndex     uint64 `json:"logIndex"`
	Amount0      string `json:"amount0"`
	Amount1      string `json:"amount1"`
	SqrtPriceX96 string `json:"sqrtPriceX96"`
	Liquidity    string `json:"liquidity"`
	Tick         int    `json:"tick"`
	Date         string `json:"date"`
}

func (in liquidityEventInput) toEvent() (LiquidityEvent, error) {
	date, err := time.Parse(time.RFC3339, in.Date)
	if err != nil {
		return LiquidityEvent{}, fmt.Errorf("event: parse liquidity event %s date: %w", in.ID, err)
	}
	liquidity, err := decimalUint(in.Liquidity)
	if err != nil {
		return LiquidityEvent{}, fmt.Errorf("event: parse liquidity event %s liquidity: %w", in.ID, err)
	}
	amount0, err := decimalUint(in.Amount0)
	if err != nil {
		return LiquidityEvent{}, fmt.Errorf("event: parse liquidity event %s amount0: %w", in.ID, err)
	}
	amount1, err := decimalUint(in.Amount1)
	if err != nil {
		return LiquidityEvent{}, fmt.Errorf("event: parse liquidity event %s amount1: %w", in.ID, err)
	}
	return LiquidityEvent{
		ID:          in.ID,
		BlockNumber: in.BlockNumber,
		LogIndex:    in.LogIndex,
		Type:        in.Type,
		TickLower:   in.TickLower,
		TickUpper:   in.TickUpper,
		Liquidity:   liquidity,
		Amount0:     amount0,
		Amount1:     amount1,
		Date:        date,
	}, nil
}

func (in swapEventInput) toEvent() (SwapEvent, error) {
	date, err := time.Parse(time.RFC3339, in.Date)
	if err != nil {
		return SwapEvent{}, fmt.Errorf("event: parse swap event %s date: %w", in.ID, err)
	}
	amount0, err := decimalUint(in.Amount0)
	if err != nil {
		return SwapEvent{}, fmt.Errorf("event: parse swap event %s amount0: %w", in.ID, err)
	}
	amount1, err := decimalUint(in.Amount1)
	if err != nil {
		return SwapEvent{}, fmt.Errorf("event: parse swap event %s amount1: %w", in.ID, err)
	}
	sqrtPriceX96, err := decimalUint(in.SqrtPriceX96)
	if err != nil {
		return SwapEvent{}, fmt.Errorf("event: parse swap event %s sqrtPriceX96: %w", in.ID, err)
	}
	liquidity, err := decimalUint(in.Liquidity)
	if err != nil {
		return SwapEvent{}, fmt.Errorf("event: parse swap event %s liquidity: %w", in.ID, err)
	}
	return SwapEvent{
		ID:           in.ID,
		BlockNumber:  in.BlockNumber,
		LogIndex:     in.LogIndex,
		Amount0:      amount0,
		Amount1:      amount1,
		SqrtPriceX96: sqrtPriceX96,
		Liquidity:    liquidity,
		Tick:         in.Tick,
		Date:         date,
	}, nil
}

func decimalUint(s string) (*ui.Int, error) {
	if s == "" {
		return new(ui.Int), nil
	}
	v, err := ui.FromDecimal(s)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// LoadJSON decodes liquidity and swap events from a JSON file holding
// {"liquidityEvents": [...], "swapEvents": [...]}, returning both streams
// sorted ascending by (blockNumber, logIndex).
func LoadJSON(path string) (liquidityEvents []LiquidityEvent, swapEvents []SwapEvent, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("event: open %s: %w", path, err)
	}
	defer f.Close()

	var doc struct {
		LiquidityEvents []liquidityEventInput `json:"liquidityEvents"`
		SwapEvents      []swapEventInput      `json:"swapEvents"`
	}
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("event: decode %s: %w", path, err)
	}

	for _, in := range doc.LiquidityEvents {
		ev, err := in.toEvent()
		if err != nil {
			return nil, nil, err
		}
		liquidityEvents = append(liquidityEvents, ev)
	}
	for _, in := range doc.SwapEvents {
		ev, err := in.toEvent()
		if err != nil {
			return nil, nil, err
		}
		swapEvents = append(swapEvents, ev)
	}

	sortLiquidityEvents(liquidityEvents)
	sortSwapEvents(swapEvents)
	return liquidityEvents, swapEvents, nil
}

// LoadCSV decodes one event stream from a CSV file. kind selects the
// record shape ("liquidity" or "swap"); the header row names columns
// matching the corresponding *Input struct's json tags.
func LoadCSV(path string, kind string) (liquidityEvents []LiquidityEvent, swapEvents []SwapEvent, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("event: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("event: read header of %s: %w", path, err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("event: read row of %s: %w", path, err)
		}

		blockNumber, err := strconv.ParseUint(record[col["blockNumber"]], 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("event: parse blockNumber in %s: %w", path, err)
		}
		logIndex, err := strconv.ParseUint(record[col["logIndex"]], 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("event: parse logIndex in %s: %w", path, err)
		}

		switch kind {
		case "liquidity":
			tickLower, _ := strconv.Atoi(record[col["tickLower"]])
			tickUpper, _ := strconv.Atoi(record[col["tickUpper"]])
			in := liquidityEventInput{
				ID:          record[col["id"]],
				BlockNumber: blockNumber,
				LogIndex:    logIndex,
				Type:        record[col["type"]],
				TickLower:   tickLower,
				TickUpper:   tickUpper,
				Liquidity:   record[col["liquidity"]],
				Amount0:     record[col["amount0"]],
				Amount1:     record[col["amount1"]],
				Date:        record[col["date"]],
			}
			ev, err := in.toEvent()
			if err != nil {
				return nil, nil, err
			}
			liquidityEvents = append(liquidityEvents, ev)
		case "swap":
			tick, _ := strconv.Atoi(record[col["tick"]])
			in := swapEventInput{
				ID:           record[col["id"]],
				BlockNumber:  blockNumber,
				LogIndex:     logIndex,
				Amount0:      record[col["amount0"]],
				Amount1:      record[col["amount1"]],
				SqrtPriceX96: record[col["sqrtPriceX96"]],
				Liquidity:    record[col["liquidity"]],
				Tick:         tick,
				Date:         record[col["date"]],
			}
			ev, err := in.toEvent()
			if err != nil {
				return nil, nil, err
			}
			swapEvents = append(swapEvents, ev)
		default:
			return nil, nil, fmt.Errorf("event: unknown CSV kind %q", kind)
		}
	}

	sortLiquidityEvents(liquidityEvents)
	sortSwapEvents(swapEvents)
	return liquidityEvents, swapEvents, nil
}

func sortLiquidityEvents(events []LiquidityEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].BlockNumber != events[j].BlockNumber {
			return events[i].BlockNumber < events[j].BlockNumber
		}
		return events[i].LogIndex < events[j].LogIndex
	})
}

func sortSwapEvents(events []SwapEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].BlockNumber != events[j].BlockNumber {
			return events[i].BlockNumber < events[j].BlockNumber
		}
		return events[i].LogIndex < events[j].LogIndex
	})
}
