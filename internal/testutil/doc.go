// Package testutil contains helper builders and test doubles used across
// package tests to reduce boilerplate when constructing memory records,
// stores and model backends. They are not intended for production usage.
package testutil
