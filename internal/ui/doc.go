// Package ui renders terminal output for the co2monitor CLI.
//
// Printer writes one line per reading for "co2monitor read" and styled
// header and error boxes for the other commands. WatchModel is the Bubble
// Tea dashboard behind "co2monitor watch": it shows the latest CO2 value
// with its air quality band and a gauge, the latest temperature, and a
// spinner until the first reading arrives.
//
// # Air Quality Bands
//
//	good      below 800 ppm
//	moderate  800 to 1199 ppm
//	poor      1200 ppm and above
package ui
