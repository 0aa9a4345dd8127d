// Command rulectl is a reference wrapper around pkg/rule/engine: it
// evaluates (or just validates) one rule file against one JSON input
// document and prints the result as text or JSON.
//
// Usage:
//
//	rulectl --rule credit_tier.yaml --input '{"credit_score": 750}'
//
//	rulectl --rule credit_tier.yaml --validate-only
//
//	rulectl --rule credit_tier.yaml --input '{"credit_score": 750}' --format json
package main

func main() {
	Execute()
}
