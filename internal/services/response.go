package services

// USSD gateway response prefixes: CON keeps the session open for more
// input, END terminates it.

// Con marks a response as continuing the session.
func Con(message string) string {
	return "CON " + message
}

// End marks a response as terminating the session.
func End(message string) string {
	return "END " + message
}
