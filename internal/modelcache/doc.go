// Package modelcache keeps one resident model handle per model family
// so repeated requests reuse warm state instead of reloading weights.
package modelcache
