package builtins

func convToNumber(args []interface{}) (interface{}, error) {
	d, ok := toDecimal(arg(args, 0))
	if !ok {
		return nil, nil
	}
	return d, nil
}

func convToString(args []interface{}) (interface{}, error) {
	return toStringValue(arg(args, 0)), nil
}

func convToBoolean(args []interface{}) (interface{}, error) {
	return toBoolValue(arg(args, 0)), nil
}
