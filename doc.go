/* Command ppedoor: a door host for PPE programs

A door is a program that a bulletin board hands its caller to: the caller's
terminal talks to the door directly, the door reads and updates the board's
user and node records, and when it ends the caller goes back to the board.
ppedoor runs one such program, described by a YAML program document (see
internal/progfile), either once on the local terminal or for every caller that
connects over TCP.

Serving

By default ppedoor listens on 127.0.0.1:4321 and gives each connection a node
number, up to max_nodes concurrent sessions; further callers are told that
every node is busy. Each session asks for a user name, which must match a
configured user's name or alias, then runs the program for that user. The
session speaks telnet just enough to put the remote side into character mode;
everything the program prints is transcoded from @-codes into ANSI escape
sequences.

When the run ends, any user records or node entries the program changed are
committed back to the host's copy of the board data, so that later sessions
see them. WRUNET messages addressed to an occupied node are shown on that
node's terminal.

The program document is reloaded whenever it changes on disk; sessions
already running keep the version they started with.

Local runs

With -local the program runs once on this terminal, using line editing when
stdin is a terminal. With -memio file channels read and write an empty
in-memory store instead of the board directory.

Configuration

A YAML document given with -config may set:

	listen: "127.0.0.1:4321"
	max_nodes: 4
	root: /srv/bbs          # file channel names resolve under here
	program: door.yaml
	read_timeout: 10m       # per line of input
	timeout: 1h             # per run; zero means none
	capture: /srv/bbs/caps  # keep a copy of each session's output
	board_data:
	  board: {name: "Test BBS", sysop: SYSOP}
	  users:
	    - {name: BOB, city: Shelbyville, security: 20, page_len: 24}
	  current_user: 0
	  nodes: []
	  texts: {}

Flags override the document; -dump-config prints the result and exits.

Logging

Log lines go to stderr, prefixed with a level and, when serving, a timestamp
and node number. LOG lines come from the program's LOG statement, SPRINT lines
from its diagnostic output, and with -trace every executed statement is logged
as TRACE along with a state dump when a run fails.
*/
package main
