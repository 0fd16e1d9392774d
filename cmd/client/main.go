// Command client is a thin interactive front-end for the portal's line
// protocol: it forwards typed commands and prints the response lines. All
// business rules live on the server.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"
)

const help = `Commands:
  LOGIN <username> <password>        authenticate
  LOGOUT | WHOAMI | PASSWD <new>     session
  ADD_USER <name> <pw> <role>        admin
  ACTIVATE_USER | DEACTIVATE_USER <id>
  ADD_COURSE <code> <facultyId> <seats> <name…>
  EDIT_COURSE <id> <seats> <name…>
  LIST_USERS | LIST_COURSES | LIST_ENROLLMENTS
  ENROLL <courseId> | DROP <courseId> | MY_COURSES
  ROSTER <courseId>                  faculty
  QUIT                               disconnect`

func main() {
	addr := flag.String("addr", "localhost:8080", "portal server address")
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Printf("Connected to %s. Type HELP for commands.\n", *addr)

	stdin := bufio.NewScanner(os.Stdin)
	responses := bufio.NewScanner(conn)

	for {
		fmt.Print("> ")
		if !stdin.Scan() {
			return
		}
		line := strings.TrimSpace(stdin.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "HELP") {
			fmt.Println(help)
			continue
		}

		if _, err := fmt.Fprintln(conn, line); err != nil {
			fmt.Fprintf(os.Stderr, "connection lost: %v\n", err)
			os.Exit(1)
		}
		if !responses.Scan() {
			fmt.Fprintln(os.Stderr, "server closed the connection")
			os.Exit(1)
		}
		fmt.Println(responses.Text())

		if strings.EqualFold(line, "QUIT") {
			return
		}
	}
}
