// Package channel wraps Go channels in a Sender/Receiver pair with explicit
// receiver drop. A send against a dropped receiver reports ErrDelivery
// instead of blocking forever, which is the only cancellation signal
// producers in this module observe.
package channel
