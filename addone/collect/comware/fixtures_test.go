package comware

const versionOutput = `HP Comware Platform Software
Comware Software, Version 5.20.99, Release 1519P06
Copyright (c) 2010-2016 Hewlett Packard Enterprise Development LP
HP V1910-24G-PoE (365W) Switch uptime is 0 week, 2 days, 3 hours, 52 minutes

HP V1910-24G-PoE (365W) Switch
128M    bytes DRAM
128M    bytes Nand Flash Memory
Config Register points to Nand Flash

Hardware Version is REV.B
CPLD Version is 002
Bootrom Version is 163
[SubSlot 0] 24GE+4SFP+POE Hardware Version is REV.C
`

const manuinfoOutput = `Slot 1 CPU 0:
DEVICE_NAME          : V1910-24G-PoE (365W) JE007A
DEVICE_SERIAL_NUMBER : CN12BX3456
MAC_ADDRESS          : 0023-8912-3456
MANUFACTURING_DATE   : 2012-06-15
VENDOR_NAME          : HP
`

const cpuOutput = `Unit CPU usage:
       7% in last 5 seconds
       5% in last 1 minute
       4% in last 5 minutes
`

const memoryOutput = `System Total Memory(bytes): 96178176
Total Used Memory(bytes): 51054312
Used Rate: 53%
`

const interfaceOutput = `The brief information of interface(s) under route mode:
Link: ADM - administratively down; Stby - standby
Protocol: (s) - spoofing
Interface            Link Protocol Main IP         Description
NULL0                UP   UP(s)    --
Vlan1                UP   UP       192.168.1.1

The brief information of interface(s) under bridge mode:
Link: ADM - administratively down; Stby - standby
Speed or Duplex: (a)/A - auto; H - half; F - full
Type: A - access; T - trunk; H - hybrid
Interface            Link Speed   Duplex Type PVID Description
GE1/0/1              UP   1G(a)   F(a)   A    1
GE1/0/2              DOWN auto    A      A    1
GE1/0/3              ADM  auto    A      T    10   uplink spare
GE1/0/4              UP   100M(a) F(a)   A    20   AP lobby
`

const poeInterfaceOutput = `Interface  Enable Priority  CurPower  Operating  IEEE  Detection
                            (W)       Status     Class Status
GE1/0/1    enable low       4.4       on         2     delivering-power
GE1/0/2    enable low       0.0       off        -     searching
GE1/0/4    enable critical  6.1       on         3     delivering-power
 --- 2 port(s) on,      10.5 (W) consumed,  354.5 (W) remaining ---
`

const poePowerOutput = ` PSE ID                       : 4
 PSE Legacy Detection         : disable
 PSE Max Power                : 365 W
 PSE Total Power Consumption  : 10.5 W
 PSE Available Power          : 354.5 W
 PSE Peak Value               : 15.6 W
 PSE Average Value            : 9.2 W
`

const fanOutput = ` Fan   1 State: Normal
 Fan   2 State: Fault
`

const environmentOutput = ` System temperature information (degree centigrade):
 ----------------------------------------------------
 SlotNo  Temperature  Lower limit  Upper limit
 1       36           0            65
`

const lldpOutput = `Local Interface Chassis ID      Port ID               System Name
GE1/0/25        0023-89aa-bbcc  GigabitEthernet1/0/48 core-sw
GE1/0/26        0023-89aa-bbdd  GigabitEthernet1/0/47 core-sw
`

const macOutput = `MAC ADDR       VLAN ID  STATE          PORT INDEX               AGING TIME(s)
0011-2233-4455 1        Learned        GigabitEthernet1/0/1     AGING
0011-2233-4466 20       Learned        GigabitEthernet1/0/4     AGING
000f-e212-3456 1        Config static  GigabitEthernet1/0/2     NOAGING

  ---  3 mac address(es) found  ---
`

const vlanOutput = ` VLAN ID: 1
 VLAN Type: static
 Route Interface: configured
 IP Address: 192.168.1.1
 Subnet Mask: 255.255.255.0
 Description: VLAN 0001
 Name: VLAN 0001
 Broadcast MAX-ratio: 100%
 Tagged   Ports: none
 Untagged Ports:
    GigabitEthernet1/0/1     GigabitEthernet1/0/2
    GigabitEthernet1/0/3

 VLAN ID: 20
 VLAN Type: static
 Route Interface: not configured
 Description: wifi
 Name: wifi
 Broadcast MAX-ratio: 100%
 Tagged   Ports:
    GigabitEthernet1/0/3
 Untagged Ports:
    GigabitEthernet1/0/4
`

const arpOutput = `                Type: S-Static    D-Dynamic    A-Authorized
IP Address       MAC Address     VLAN ID  Interface              Aging Type
192.168.1.10     0011-2233-4455  1        GE1/0/1                20    D
192.168.1.20     0011-2233-4466  20       GE1/0/4                N/A   S
`
