// Package audio delivers synthesized chunks to their destination: a file,
// stdout, or the local sound device through oto/v3.
package audio
