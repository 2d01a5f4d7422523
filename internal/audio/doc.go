// Package audio synthesizes PCM test tones and packs them into canonical
// RIFF/WAVE containers. It also provides header inspection and decoding
// helpers used to verify generated files.
package audio
