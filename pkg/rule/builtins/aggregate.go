package builtins

import "github.com/shopspring/decimal"

func aggSum(args []interface{}) (interface{}, error) {
	list, ok := toList(arg(args, 0))
	if !ok {
		return nil, nil
	}
	total := decimal.Zero
	for _, item := range list {
		if d, ok := toDecimal(item); ok {
			total = total.Add(d)
		}
	}
	return total, nil
}

func aggAvg(args []interface{}) (interface{}, error) {
	list, ok := toList(arg(args, 0))
	if !ok || len(list) == 0 {
		return nil, nil
	}
	total := decimal.Zero
	count := 0
	for _, item := range list {
		if d, ok := toDecimal(item); ok {
			total = total.Add(d)
			count++
		}
	}
	if count == 0 {
		return nil, nil
	}
	return total.DivRound(decimal.NewFromInt(int64(count)), 10), nil
}

func aggFirst(args []interface{}) (interface{}, error) {
	list, ok := toList(arg(args, 0))
	if !ok || len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func aggLast(args []interface{}) (interface{}, error) {
	list, ok := toList(arg(args, 0))
	if !ok || len(list) == 0 {
		return nil, nil
	}
	return list[len(list)-1], nil
}

func aggSize(args []interface{}) (interface{}, error) {
	list, ok := toList(arg(args, 0))
	if !ok {
		return decimal.Zero, nil
	}
	return decimal.NewFromInt(int64(len(list))), nil
}
