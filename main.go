package main

import "hrportal/onboarding-api/cmd"

func main() {
	cmd.Execute()
}
