// Package queue restores sequence order for results produced out of order
// by concurrent synthesis workers. Items are released strictly by their
// sequence number, so playback order always matches reading order.
package queue
