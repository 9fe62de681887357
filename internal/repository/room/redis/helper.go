package redis

import "strconv"

func boolToField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func fieldToBool(field string) bool {
	return field == "1"
}

func fieldToInt(field string) int {
	i, _ := strconv.Atoi(field)
	return i
}

func fieldToFloat64(field string) float64 {
	f, _ := strconv.ParseFloat(field, 64)
	return f
}
