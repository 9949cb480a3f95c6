// Command cdxserver indexes and serves web archive CDX records.
package main

import "github.com/nla/cdxserver/cmd"

func main() {
	cmd.Execute()
}
