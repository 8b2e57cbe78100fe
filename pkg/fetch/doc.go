// Package fetch downloads web pages and their same-origin stylesheets over
// HTTP and turns them into in-memory documents for extraction.
package fetch
