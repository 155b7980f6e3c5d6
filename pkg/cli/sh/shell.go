package sh

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/bahrs.go/pkg/l0/msgs"
	"github.com/robotalks/bahrs.go/pkg/l0/serial"
	"github.com/robotalks/bahrs.go/pkg/session"
)

// DefaultTail is the number of samples printed by tail.
const DefaultTail = 10

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell  *ishell.Shell
	Config *session.Config
	Link   *Link
	// Ports enumerates available ports.
	Ports func() ([]string, error)
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&PortsCmd,
		&ConnectCmd,
		&DisconnectCmd,
		&StatusCmd,
		&TailCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *session.Config, opener session.Opener) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
		Link:   NewLink(conf, opener),
		Ports:  serial.Ports,
	}
	s.Link.OnStopped = s.linkStopped
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if !ShellFrom(c).Link.Connected() {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Connect connects port, Config.Port if empty.
func (s *Shell) Connect(port string) error {
	if err := s.Link.Connect(port); err != nil {
		return err
	}
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", s.Link.Session.Status().Port))
	return nil
}

// Disconnect disconnects current port.
func (s *Shell) Disconnect() error {
	err := s.Link.Disconnect()
	s.Shell.SetPrompt(unconnectedPrompt)
	return err
}

func (s *Shell) linkStopped(port string, err error) {
	s.Shell.SetPrompt(unconnectedPrompt)
	if err != nil {
		s.Shell.Printf("\n%s disconnected: %v\n", port, err)
	}
}

// PrintJSON prints v as JSON.
func PrintJSON(c *ishell.Context, v interface{}) {
	out, err := json.Marshal(v)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(string(out))
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Config.Port != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Port)
		}
		if err := s.Connect(""); err != nil {
			log.Fatalf("connect %q failed: %v", s.Config.Port, err)
		}
	}
	defer s.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			ports, err := s.Ports()
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if ports == nil {
					ports = []string{}
				}
				PrintJSON(c, ports)
				return
			}
			if len(ports) == 0 {
				c.Println("No serial ports found")
				return
			}
			for _, port := range ports {
				c.Println(port)
			}
		},
	}

	// ConnectCmd starts a session.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[PORT]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			var port string
			if len(c.Args) > 0 {
				port = c.Args[0]
			} else if s.Config.Port == "" {
				ports, err := s.Ports()
				if err != nil {
					c.Err(err)
					return
				}
				switch {
				case len(ports) == 0:
					c.Err(fmt.Errorf("no serial ports found"))
					return
				case len(ports) == 1:
					port = ports[0]
				case !s.Interactive:
					c.Err(fmt.Errorf("more than 1 ports found in non-interactive mode"))
					return
				default:
					port = ports[s.Shell.MultiChoice(ports, "Which one to connect?")]
				}
			}
			if err := s.Connect(port); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd stops current session.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			if err := ShellFrom(c).Disconnect(); err != nil {
				c.Err(err)
			}
		},
	}

	// StatusCmd prints session counters.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"s"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			st := s.Link.Status()
			if s.OutputJSON {
				PrintJSON(c, &st)
				return
			}
			c.Println(FormatStatus(st))
		},
	}

	// TailCmd prints the latest samples.
	TailCmd = ishell.Cmd{
		Name:    "tail",
		Aliases: []string{"t"},
		Help:    "[N]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			n := DefaultTail
			if len(c.Args) > 0 {
				val, err := strconv.Atoi(c.Args[0])
				if err != nil || val <= 0 {
					c.Err(fmt.Errorf("Invalid N: %s", c.Args[0]))
					return
				}
				n = val
			}
			samples := s.Link.Tail(n)
			if s.OutputJSON {
				if samples == nil {
					samples = []msgs.NavData{}
				}
				PrintJSON(c, samples)
				return
			}
			for _, sample := range samples {
				c.Println(sample.String())
			}
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	conf, err := session.FromFlags()
	if err != nil {
		log.Fatalln(err)
	}
	opener := &serial.Opener{BaudRate: conf.BaudRate, ReadTimeout: conf.ReadTimeout}
	New(conf, opener).WithAutoConnect(true).Run(flag.Args()...)
}
