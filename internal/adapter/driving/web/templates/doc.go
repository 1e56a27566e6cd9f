// Package templates holds the page layout shared by the page components.
package templates
